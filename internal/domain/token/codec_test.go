package token_test

import (
	"encoding/base64"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/astro-web3/booking-api/internal/domain/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// base64url, unpadded
const testSecret = "c2VjcmV0LWtleS1mb3ItdGVzdGluZy1vbmx5LTMyYg"

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func newCodec(t *testing.T) (*token.Codec, *clock) {
	t.Helper()
	cfg, err := token.NewSigningConfig(true, testSecret, "booking-api", "booking-clients")
	require.NoError(t, err)

	clk := &clock{t: epoch}
	return token.NewCodec(cfg, token.WithClock(clk.Now)), clk
}

func aliceClaims(jti string) token.ClaimSet {
	return token.ClaimSet{
		{Type: token.ClaimName, Value: "alice"},
		{Type: token.ClaimID, Value: jti},
		{Type: token.ClaimRole, Value: "Customer"},
		{Type: token.ClaimRole, Value: "Driver"},
	}
}

func TestIssueAndVerify(t *testing.T) {
	codec, _ := newCodec(t)

	issued, err := codec.Issue(aliceClaims("f3a1c2d4-0000-4000-8000-000000000001"))
	require.NoError(t, err)
	require.Equal(t, epoch.Add(token.AccessTokenLifetime), issued.ExpiresAt.UTC())
	require.Len(t, strings.Split(issued.Token, "."), 3)

	claims, err := codec.Verify(issued.Token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Name())
	require.Equal(t, "f3a1c2d4-0000-4000-8000-000000000001", claims.ID())
	require.ElementsMatch(t, []string{"Customer", "Driver"}, claims.Roles())
}

func TestIssueFillsMissingJTI(t *testing.T) {
	codec, _ := newCodec(t)

	issued, err := codec.Issue(token.ClaimSet{{Type: token.ClaimName, Value: "bob"}})
	require.NoError(t, err)

	claims, err := codec.Verify(issued.Token)
	require.NoError(t, err)
	require.NotEmpty(t, claims.ID())
	require.Empty(t, claims.Roles())
}

func TestIssueRejectsNilClaims(t *testing.T) {
	codec, _ := newCodec(t)

	_, err := codec.Issue(nil)
	require.Error(t, err)
}

func TestDistinctJTIProduceDistinctTokens(t *testing.T) {
	codec, _ := newCodec(t)

	first, err := codec.Issue(aliceClaims("jti-1"))
	require.NoError(t, err)
	second, err := codec.Issue(aliceClaims("jti-2"))
	require.NoError(t, err)

	require.NotEqual(t, first.Token, second.Token)

	for _, tok := range []string{first.Token, second.Token} {
		_, err := codec.Verify(tok)
		require.NoError(t, err)
	}
}

func TestVerifyExpiryWindow(t *testing.T) {
	codec, clk := newCodec(t)

	issued, err := codec.Issue(aliceClaims("jti-exp"))
	require.NoError(t, err)

	t.Run("within lifetime", func(t *testing.T) {
		clk.Set(epoch.Add(token.AccessTokenLifetime - time.Second))
		_, err := codec.Verify(issued.Token)
		require.NoError(t, err)
	})

	t.Run("inside clock skew", func(t *testing.T) {
		clk.Set(epoch.Add(token.AccessTokenLifetime + token.ClockSkew))
		_, err := codec.Verify(issued.Token)
		require.NoError(t, err)
	})

	t.Run("past clock skew", func(t *testing.T) {
		clk.Set(epoch.Add(token.AccessTokenLifetime + token.ClockSkew + time.Second))
		_, err := codec.Verify(issued.Token)
		require.ErrorIs(t, err, token.ErrExpired)

		var verr *token.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, token.ErrExpired, verr.Kind)
	})
}

func TestVerifyFlippedSignatureByte(t *testing.T) {
	codec, _ := newCodec(t)

	issued, err := codec.Issue(aliceClaims("jti-sig"))
	require.NoError(t, err)

	parts := strings.Split(issued.Token, ".")
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)

	for i := range sig {
		tampered := make([]byte, len(sig))
		copy(tampered, sig)
		tampered[i] ^= 0x01

		raw := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(tampered)
		_, err := codec.Verify(raw)
		require.ErrorIs(t, err, token.ErrSignatureMismatch, "byte %d", i)
	}
}

func TestVerifyFlippedSignatureCharacter(t *testing.T) {
	codec, _ := newCodec(t)

	issued, err := codec.Issue(aliceClaims("jti-sig-char"))
	require.NoError(t, err)

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	parts := strings.Split(issued.Token, ".")
	sig := []byte(parts[2])

	for i := range sig {
		idx := strings.IndexByte(alphabet, sig[i])
		require.GreaterOrEqual(t, idx, 0)

		tampered := make([]byte, len(sig))
		copy(tampered, sig)
		// the lowest bit of the last character is an unused padding bit
		tampered[i] = alphabet[idx^1]

		raw := parts[0] + "." + parts[1] + "." + string(tampered)
		_, err := codec.Verify(raw)
		require.ErrorIs(t, err, token.ErrSignatureMismatch, "char %d", i)
	}
}

func TestVerifyRejectsOtherKey(t *testing.T) {
	codec, _ := newCodec(t)

	otherCfg, err := token.NewSigningConfig(true, base64.RawURLEncoding.EncodeToString([]byte("another-secret-of-decent-length!")), "", "")
	require.NoError(t, err)
	other := token.NewCodec(otherCfg, token.WithClock(func() time.Time { return epoch }))

	issued, err := other.Issue(aliceClaims("jti-other"))
	require.NoError(t, err)

	_, err = codec.Verify(issued.Token)
	require.ErrorIs(t, err, token.ErrSignatureMismatch)
}

func TestVerifyRejectsUnexpectedAlgorithms(t *testing.T) {
	codec, _ := newCodec(t)
	key, err := token.DecodeKey(testSecret)
	require.NoError(t, err)

	claims := jwt.MapClaims{"name": "alice", "exp": epoch.Add(time.Hour).Unix()}

	t.Run("HS512", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(key)
		require.NoError(t, err)

		_, err = codec.Verify(raw)
		require.ErrorIs(t, err, token.ErrSignatureMismatch)
	})

	t.Run("none", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = codec.Verify(raw)
		require.ErrorIs(t, err, token.ErrSignatureMismatch)
	})
}

func TestVerifyRequiresExpiry(t *testing.T) {
	codec, _ := newCodec(t)
	key, err := token.DecodeKey(testSecret)
	require.NoError(t, err)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"name": "alice"}).SignedString(key)
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, token.ErrMalformed)
}

func TestVerifyMalformed(t *testing.T) {
	codec, _ := newCodec(t)

	for _, raw := range []string{"", "garbage", "a.b", "a.b.c", "###.###.###"} {
		_, err := codec.Verify(raw)
		require.ErrorIs(t, err, token.ErrMalformed, "input %q", raw)
	}
}

func TestNewSigningConfig(t *testing.T) {
	t.Run("padded key", func(t *testing.T) {
		_, err := token.NewSigningConfig(true, base64.URLEncoding.EncodeToString([]byte("k")), "", "")
		require.NoError(t, err)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := token.NewSigningConfig(true, "   ", "", "")
		require.ErrorIs(t, err, token.ErrEmptyKey)
	})

	t.Run("standard alphabet is rejected", func(t *testing.T) {
		_, err := token.NewSigningConfig(true, "ab+/cd", "", "")
		require.ErrorIs(t, err, token.ErrBadKeyEncoding)
	})
}

func TestVerifyConcurrent(t *testing.T) {
	codec, _ := newCodec(t)

	issued, err := codec.Issue(aliceClaims("jti-concurrent"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := codec.Verify(issued.Token)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}
