package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDoSucceedsAfterRetries(t *testing.T) {
	attempts := 0
	res, err := Do(context.Background(), 3, Fixed(time.Millisecond), func() (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("not yet")
		}
		return 42, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, res)
	require.Equal(t, 3, attempts)
}

func TestDoFailsPermanently(t *testing.T) {
	cause := errors.New("boom")
	_, err := Do(context.Background(), 2, Fixed(time.Millisecond), func() (string, error) {
		return "", cause
	})
	var failed *ErrFailedPermanently
	require.ErrorAs(t, err, &failed)
	require.ErrorIs(t, err, cause)
}

func TestDoStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	_, err := Do(ctx, 10, Fixed(time.Hour), func() (int, error) {
		attempts++
		cancel()
		return 0, errors.New("fail")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, attempts)

	_, err = Do(context.Background(), 0, Fixed(0), func() (int, error) { return 0, nil })
	require.Error(t, err)
}
