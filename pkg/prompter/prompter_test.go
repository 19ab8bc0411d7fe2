package prompter

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prompterFor(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return New(strings.NewReader(input), &out), &out
}

func TestString_KeepsTypeAhead(t *testing.T) {
	p, out := prompterFor("kai@example.com\n  secret  \n")

	email, err := p.String("Email: ")
	require.NoError(t, err)
	pw, err := p.Password("Password: ")
	require.NoError(t, err)

	assert.Equal(t, "kai@example.com", email)
	assert.Equal(t, "secret", pw)
	assert.Equal(t, "Email: Password: ", out.String())
}

func TestString_LastLineWithoutNewline(t *testing.T) {
	p, _ := prompterFor("123456")

	code, err := p.String("Code: ")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	_, err = p.String("Again: ")
	assert.ErrorIs(t, err, io.EOF)
}

func TestRequired(t *testing.T) {
	p, out := prompterFor("\n\nkai\n")

	v, err := p.Required("Username: ")

	require.NoError(t, err)
	assert.Equal(t, "kai", v)
	assert.Equal(t, 2, strings.Count(out.String(), "A value is required."))
}

func TestConfirm(t *testing.T) {
	tests := map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false}
	for input, want := range tests {
		p, _ := prompterFor(input)
		got, err := p.Confirm("Logout?")
		require.NoError(t, err)
		assert.Equal(t, want, got, input)
	}
}

func TestSelect(t *testing.T) {
	p, out := prompterFor("2\n")
	idx, err := p.Select("Type", []string{"JOB", "TRYOUT"})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Contains(t, out.String(), "2) TRYOUT")

	for _, bad := range []string{"0\n", "3\n", "x\n"} {
		p, _ = prompterFor(bad)
		_, err = p.Select("Type", []string{"JOB", "TRYOUT"})
		assert.Error(t, err, bad)
	}
}

func TestMultiline(t *testing.T) {
	p, _ := prompterFor("first\nsecond\n\nignored\n")
	text, err := p.Multiline("Description", 10)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", text)

	p, _ = prompterFor("a\nb\nc\n")
	text, err = p.Multiline("Description", 2)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", text)
}

func TestLines(t *testing.T) {
	p, _ := prompterFor("k\nka\r\nkai")

	var got []string
	for line := range p.Lines(context.Background()) {
		got = append(got, line)
	}

	assert.Equal(t, []string{"k", "ka", "kai"}, got)
}
