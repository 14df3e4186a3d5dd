package coupon

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/rs/zerolog"
)

const (
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// defaultMaxAttempts bounds the collision-retry loop. With ~176M
	// possible codes the loop terminates on the first attempt in practice.
	defaultMaxAttempts = 50
)

// ExistenceChecker reports whether a candidate code is already taken.
type ExistenceChecker interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// Generator produces unique human-readable redemption codes in the form
// ABC-1234-XYZ. Uniqueness is checked against the store before a candidate
// is handed out; the insert path must still rely on the unique constraint
// and retry on collision, since check and insert are separate steps.
type Generator struct {
	exists      ExistenceChecker
	logger      zerolog.Logger
	maxAttempts int
}

// NewGenerator creates a code generator backed by the given existence check.
func NewGenerator(exists ExistenceChecker, logger zerolog.Logger) *Generator {
	return &Generator{
		exists:      exists,
		logger:      logger.With().Str("component", "code-generator").Logger(),
		maxAttempts: defaultMaxAttempts,
	}
}

// Generate returns a fresh code that did not exist in the store at the time
// of the check.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		code, err := RandomCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}

		taken, err := g.exists.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code uniqueness: %w", err)
		}

		if !taken {
			return code, nil
		}

		g.logger.Debug().
			Str("code", code).
			Int("attempt", attempt).
			Msg("generated code already taken, retrying")
	}

	return "", fmt.Errorf("failed to generate unique code after %d attempts", g.maxAttempts)
}

// RandomCode produces a single candidate code: three uppercase letters, a
// zero-padded four-digit number, three uppercase letters, dash-separated.
func RandomCode() (string, error) {
	left, err := randomLetters(3)
	if err != nil {
		return "", err
	}

	right, err := randomLetters(3)
	if err != nil {
		return "", err
	}

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%04d-%s", left, n.Int64(), right), nil
}

func randomLetters(count int) (string, error) {
	buf := make([]byte, count)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeLetters))))
		if err != nil {
			return "", err
		}
		buf[i] = codeLetters[n.Int64()]
	}
	return string(buf), nil
}
