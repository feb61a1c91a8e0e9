package services

import (
	"math/rand"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const RoomCodeLength = 4

// NormalizeRoomCode transliterates a user-typed code to ASCII and upper-cases it.
// Only the existence check in CreateRoom guards against collisions.
func NormalizeRoomCode(code string) (string, error) {
	code = cases.Upper(language.Und).String(strings.TrimSpace(unidecode.Unidecode(code)))
	if utf8.RuneCountInString(code) != RoomCodeLength {
		return "", ErrInvalidRoomCode
	}
	for _, r := range code {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return "", ErrInvalidRoomCode
		}
	}
	return code, nil
}

// GenerateRoomCode draws a random code in 1000–9999.
func GenerateRoomCode(intn func(int) int) string {
	if intn == nil {
		intn = rand.Intn
	}
	return strconv.Itoa(1000 + intn(9000))
}
