package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "my_pkg", Sanitize("my-pkg"))
	assert.Equal(t, "ruamel_yaml", Sanitize("ruamel.yaml"))
	assert.Equal(t, "plain", Sanitize("plain"))
}

func TestFixtureName(t *testing.T) {
	assert.Equal(t, "mock_stripe", FixtureName("stripe"))
	assert.Equal(t, "mock_my_pkg", FixtureName("my-pkg"))
}

func TestRenderFixture(t *testing.T) {
	content, err := RenderFixture("stripe", []string{"checkout"})
	require.NoError(t, err)

	expected := `"""Shared mock fixtures for the stripe external dependency."""
import pytest


@pytest.fixture
def mock_stripe(mocker):
    """Mock stripe and its sub-modules."""
    mock = mocker.Mock()
    mock.checkout = mocker.Mock()
    mocker.patch.dict("sys.modules", {
        "stripe": mock,
        "stripe.checkout": mock.checkout,
    })
    return mock
`
	assert.Equal(t, expected, content)
}

func TestRenderFixtureSortsSuffixes(t *testing.T) {
	a, err := RenderFixture("pkg", []string{"zeta", "alpha"})
	require.NoError(t, err)
	b, err := RenderFixture("pkg", []string{"alpha", "zeta"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderTestFile(t *testing.T) {
	members := []TestMember{
		{
			Name:      "charge",
			ClassName: "TestCharge",
			Tests: []TestCase{
				{DefLine: "def test_charge(self, mock_stripe):", Doc: "Test charge."},
			},
		},
	}

	content, err := RenderTestFile("app.payment", "from app.payment import charge", members)
	require.NoError(t, err)

	expected := `"""Tests for app.payment."""
import pytest

from app.payment import charge


class TestCharge:
    """Tests for charge."""

    def test_charge(self, mock_stripe):
        """Test charge."""
        # TODO: Implement test
        pass
`
	assert.Equal(t, expected, content)
}

func TestRenderTestFileWithBody(t *testing.T) {
	members := []TestMember{
		{
			Name:      "charge",
			ClassName: "TestCharge",
			Body: []string{
				"def test_charge_happy_path(self):",
				"    assert charge(10) == 10",
			},
		},
	}

	content, err := RenderTestFile("app.payment", "from app.payment import charge", members)
	require.NoError(t, err)

	assert.Contains(t, content, "    def test_charge_happy_path(self):")
	assert.Contains(t, content, "        assert charge(10) == 10")
	assert.NotContains(t, content, "TODO")
}

func TestRenderTestFileNoMembers(t *testing.T) {
	content, err := RenderTestFile("app.empty", "", nil)
	require.NoError(t, err)

	assert.Equal(t, "\"\"\"Tests for app.empty.\"\"\"\nimport pytest\n", content)
}

func TestRenderFixtureConftest(t *testing.T) {
	content, err := RenderFixtureConftest([]string{"redis_fixture", "stripe_fixture"}, "_fixture.py")
	require.NoError(t, err)

	expected := `"""Auto-generated by testsmith: re-exports shared mock fixtures."""
from redis_fixture import mock_redis  # noqa: F401
from stripe_fixture import mock_stripe  # noqa: F401
`
	assert.Equal(t, expected, content)
}

func TestFixtureImports(t *testing.T) {
	imports := FixtureImports([]string{"ruamel_yaml_fixture", "stripe_fixture"}, "_fixture.py")
	assert.Equal(t, []FixtureImport{
		{Module: "ruamel_yaml_fixture", Fixture: "mock_ruamel_yaml"},
		{Module: "stripe_fixture", Fixture: "mock_stripe"},
	}, imports)
}

func TestRenderConftest(t *testing.T) {
	content, err := RenderConftest("paths_to_add", []string{"src", "tests/src"}, "src/app.py")
	require.NoError(t, err)

	assert.Contains(t, content, "def pytest_configure(config):")
	assert.Contains(t, content, "    paths_to_add = [")
	assert.Contains(t, content, `        "src",  # testsmith: src/app.py`)
	assert.Contains(t, content, `        "tests/src",  # testsmith: src/app.py`)
	assert.Contains(t, content, "    for p in paths_to_add:")
}
