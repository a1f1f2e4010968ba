package teamcode

import "math/rand"

const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// Length of every join code shared with players.
	Length = 6
)

// Generate draws a random join code. Uniqueness is not guaranteed here;
// the caller checks the generated code against active teams and retries.
func Generate() string {
	code := make([]byte, Length)
	for i := range code {
		code[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(code)
}
