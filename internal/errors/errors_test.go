package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNewAPIStatusError(t *testing.T) {
	body := []byte(strings.Repeat("x", MaxBodyInError+100))
	err := NewAPIStatusError("https://example.test/report", 3, http.StatusInternalServerError, body)

	assert.Equal(t, ErrTypeAPI, err.Type)
	assert.Equal(t, APIKindStatus, err.Context[CtxKind])
	assert.Equal(t, "https://example.test/report", err.Context[CtxEndpoint])
	assert.Equal(t, 3, err.Context[CtxPage])
	assert.Equal(t, http.StatusInternalServerError, err.Context[CtxStatusCode])
	assert.Contains(t, err.Error(), "500")

	gotBody := err.Context[CtxBody].(string)
	assert.True(t, strings.HasSuffix(gotBody, "...(truncated)"))
	assert.Len(t, gotBody, MaxBodyInError+len("...(truncated)"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exact", Truncate("exact", 5))
	assert.Equal(t, "ab...(truncated)", Truncate("abcdef", 2))
}

func TestTruncate_RuneBoundary(t *testing.T) {
	// "é" is two bytes, so a cut at 2 would land inside it
	got := Truncate("aé€z", 2)
	assert.Equal(t, "a...(truncated)", got)
	assert.True(t, utf8.ValidString(got))

	got = Truncate("a€z", 3)
	assert.Equal(t, "a...(truncated)", got)

	body := strings.Repeat("x", MaxBodyInError-1) + "€€"
	err := NewAPIStatusError("u", 1, 500, []byte(body))
	logged := err.Context[CtxBody].(string)
	assert.True(t, utf8.ValidString(logged))
	assert.Equal(t, strings.Repeat("x", MaxBodyInError-1)+"...(truncated)", logged)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want APIErrorKind
	}{
		{"status", NewAPIStatusError("u", 1, 502, nil), APIKindStatus},
		{"network", NewAPIError(APIKindNetwork, "u", 1, "request failed", errors.New("refused")), APIKindNetwork},
		{"parse wrapped", fmt.Errorf("page 2: %w", NewAPIError(APIKindParse, "u", 2, "bad json", nil)), APIKindParse},
		{"non api", NewConfigError("missing", nil), ""},
		{"plain", errors.New("boom"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsTypeAndStatusCode(t *testing.T) {
	err := fmt.Errorf("fetch: %w", NewAPIStatusError("u", 1, 503, []byte("down")))

	assert.True(t, IsType(err, ErrTypeAPI))
	assert.False(t, IsType(err, ErrTypeWrite))
	assert.Equal(t, 503, StatusCodeOf(err))
	assert.Equal(t, 0, StatusCodeOf(errors.New("plain")))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"config", NewConfigError("x", nil), 2},
		{"api", NewAPIStatusError("u", 1, 500, nil), 3},
		{"pagination", NewPaginationError("x"), 4},
		{"write", NewWriteError("p", nil), 5},
		{"wrapped write", fmt.Errorf("run: %w", NewWriteError("p", nil)), 5},
		{"plain", errors.New("x"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
