package movegen

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Klingon-tech/sui-tokengen/internal/token"
)

func testParams() token.Params {
	return token.Params{
		Decimals:    8,
		Symbol:      "TST",
		Name:        "Test Token",
		Description: "Test Description",
		Environment: token.Devnet,
	}
}

func fixedClock() time.Time {
	return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
}

func TestRender_Standard(t *testing.T) {
	out, err := Render(testParams(), Standard)
	require.NoError(t, err)

	assert.Contains(t, out, "module TestToken::TestToken {")
	assert.Contains(t, out, "public struct TESTTOKEN has drop {}")
	assert.Contains(t, out, "fun init(witness: TESTTOKEN, ctx: &mut TxContext)")
	assert.Contains(t, out, "            8,\n")
	assert.Contains(t, out, `b"TST",`)
	assert.Contains(t, out, `b"Test Token",`)
	assert.Contains(t, out, `b"Test Description",`)
	assert.Contains(t, out, "transfer::public_share_object(metadata);")
	assert.NotContains(t, out, "transfer::public_freeze_object")
	assert.NotContains(t, out, "<no value>")
}

func TestRender_Frozen(t *testing.T) {
	p := testParams()
	p.IsFrozen = true
	out, err := Render(p, Standard)
	require.NoError(t, err)

	assert.Contains(t, out, "        );\n        transfer::public_freeze_object(metadata);\n        transfer::public_transfer(")
	assert.NotContains(t, out, "public_share_object")
}

func TestRender_SingleWitnessCall(t *testing.T) {
	out, err := Render(testParams(), Standard)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "coin::create_currency("))
	assert.Equal(t, 2, strings.Count(out, "witness"))
}

func TestRender_TestVariant(t *testing.T) {
	out, err := Render(testParams(), Test)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "#[test_only]\nmodule TestToken::TestToken_tests {"))
	assert.Contains(t, out, "use TestToken::TestToken::{Self, TESTTOKEN};")
	assert.Contains(t, out, "TestToken::init_for_testing(scenario.ctx());")
	assert.NotContains(t, out, "create_currency")
}

func TestRender_EmptySlug(t *testing.T) {
	p := testParams()
	p.Name = " ,. "
	_, err := Render(p, Standard)
	assert.ErrorIs(t, err, ErrEmptySlug)
}

func TestRender_Deterministic(t *testing.T) {
	a, err := Render(testParams(), Standard)
	require.NoError(t, err)
	b, err := Render(testParams(), Standard)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderManifest(t *testing.T) {
	r, err := New(WithClock(fixedClock))
	require.NoError(t, err)

	out, err := r.RenderManifest("TestToken", token.Testnet)
	require.NoError(t, err)

	want := `[package]
name = "TestToken"
edition = "2024.beta"
version = "0.0.1"

[dependencies.Sui]
git = "https://github.com/MystenLabs/sui.git"
subdir = "crates/sui-framework/packages/sui-framework"
rev = "framework/testnet"

[addresses]
TestToken = "0x0"
`
	assert.Equal(t, want, out)
}

func TestRenderManifest_UnknownEnvironment(t *testing.T) {
	out, err := RenderManifest("Coin", token.Environment("bogus"))
	require.NoError(t, err)
	assert.Contains(t, out, `rev = "framework/devnet"`)
}

func TestNewFromStrings_UndeclaredVariable(t *testing.T) {
	r, err := NewFromStrings(map[string]string{
		CoinTemplate: "module {{.module_name}} {{.owner}}",
	})
	require.NoError(t, err)

	_, err = r.Render(testParams(), Standard)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRender)
	var re *RenderError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, CoinTemplate, re.Name)
}

func TestNewFromStrings_ParseError(t *testing.T) {
	_, err := NewFromStrings(map[string]string{
		CoinTemplate: "module {{.module_name",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTemplate)
}

func TestRender_MissingTemplate(t *testing.T) {
	r, err := NewFromStrings(map[string]string{
		CoinTemplate: "module {{.module_name}}",
	})
	require.NoError(t, err)

	_, err = r.Render(testParams(), Test)
	assert.ErrorIs(t, err, ErrTemplate)

	_, err = r.RenderManifest("x", token.Devnet)
	assert.ErrorIs(t, err, ErrTemplate)
}

func TestVariant_String(t *testing.T) {
	assert.Equal(t, "standard", Standard.String())
	assert.Equal(t, "test", Test.String())
}
