package shortener

import "github.com/jaevor/go-nanoid"

// Base62Alphabet is the alphabet generated codes are drawn from.
const Base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// DefaultCodeLength yields 62^6 (about 56.8 billion) possible codes.
const DefaultCodeLength = 6

// CodeGenerator produces candidate short codes.
type CodeGenerator func() string

// NewCodeGenerator returns a generator of uniformly random base62 codes of the given length.
// Randomness comes from crypto/rand.
func NewCodeGenerator(length int) (CodeGenerator, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}

	gen, err := nanoid.CustomASCII(Base62Alphabet, length)
	if err != nil {
		return nil, err
	}

	return CodeGenerator(gen), nil
}
