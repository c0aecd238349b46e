package container

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContainerID(t *testing.T) {
	id, err := New("abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id.String())
}

func TestNewContainerIDMaxLengthAllowed(t *testing.T) {
	src := strings.Repeat("a", MaxIDLength)
	_, err := New(src)
	assert.NoError(t, err)
}

func TestNewContainerIDTooLong(t *testing.T) {
	src := strings.Repeat("a", MaxIDLength+1)
	_, err := New(src)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIDTooLong)
}

func TestParseMachineID(t *testing.T) {
	id, err := ParseMachineID("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", id.String())
	assert.Len(t, id.Bytes(), 16)
}

func TestParseMachineIDUppercaseNormalizes(t *testing.T) {
	id, err := ParseMachineID("0123456789ABCDEF0123456789ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", id.String())
}

func TestParseMachineIDWrongLength(t *testing.T) {
	_, err := ParseMachineID("abcd")
	assert.ErrorIs(t, err, ErrInvalidMachineID)
}

func TestParseMachineIDNonHex(t *testing.T) {
	_, err := ParseMachineID(strings.Repeat("z", 32))
	assert.ErrorIs(t, err, ErrInvalidMachineID)
}

func TestParsePodID(t *testing.T) {
	scope := "kubepods-guaranteed-pod1234abcd_5678_90ab_cdef_1234567890ab.slice"
	id, err := ParsePodID(scope)
	require.NoError(t, err)
	assert.Equal(t, PodID("1234abcd567890abcdef1234567890ab"), id)
}

func TestParsePodIDNotAPodScope(t *testing.T) {
	_, err := ParsePodID("docker-" + strings.Repeat("a", 64) + ".scope")
	assert.ErrorIs(t, err, ErrNotAPodScope)
}

func TestParsePodIDMalformedHexGroup(t *testing.T) {
	_, err := ParsePodID("kubepods-podxyz.slice")
	assert.ErrorIs(t, err, ErrNotAPodScope)
}
