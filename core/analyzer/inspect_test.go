package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectFunctions(t *testing.T) {
	source := `def process(data, retries=3):
    return data


def _helper():
    pass


async def fetch(url: str) -> bytes:
    ...
`
	members, err := InspectModule(source)
	require.NoError(t, err)
	require.Len(t, members, 2)

	assert.Equal(t, "process", members[0].Name)
	assert.Equal(t, "function", members[0].Kind)
	assert.Equal(t, []string{"data", "retries"}, members[0].Params)

	assert.Equal(t, "fetch", members[1].Name)
	assert.Equal(t, []string{"url"}, members[1].Params)
}

func TestInspectClass(t *testing.T) {
	source := `class PaymentProcessor:
    def __init__(self, api_key, timeout=30):
        self.api_key = api_key

    def charge(self, amount):
        pass

    def refund(self, charge_id):
        pass

    def _validate(self):
        pass
`
	members, err := InspectModule(source)
	require.NoError(t, err)
	require.Len(t, members, 1)

	m := members[0]
	assert.Equal(t, "PaymentProcessor", m.Name)
	assert.Equal(t, "class", m.Kind)
	assert.Equal(t, []string{"api_key", "timeout"}, m.Params)
	assert.Equal(t, []string{"charge", "refund"}, m.Methods)
}

func TestInspectClassesBeforeFunctions(t *testing.T) {
	source := `def helper():
    pass


class Widget:
    def render(self):
        pass
`
	members, err := InspectModule(source)
	require.NoError(t, err)
	require.Len(t, members, 2)

	assert.Equal(t, "Widget", members[0].Name)
	assert.Equal(t, "helper", members[1].Name)
}

func TestInspectIgnoresNestedDefs(t *testing.T) {
	source := `class Service:
    def run(self):
        def inner():
            pass
        return inner
`
	members, err := InspectModule(source)
	require.NoError(t, err)
	require.Len(t, members, 1)

	assert.Equal(t, []string{"run"}, members[0].Methods)
}

func TestInspectMultilineSignature(t *testing.T) {
	source := `def configure(
    host,
    port: int = 8080,
    *args,
    **kwargs,
):
    pass
`
	members, err := InspectModule(source)
	require.NoError(t, err)
	require.Len(t, members, 1)

	assert.Equal(t, "configure", members[0].Name)
	assert.Equal(t, []string{"host", "port"}, members[0].Params)
}

func TestInspectPrivateClassSkipped(t *testing.T) {
	source := `class _Internal:
    def visible(self):
        pass
`
	members, err := InspectModule(source)
	require.NoError(t, err)
	assert.Empty(t, members)
}
