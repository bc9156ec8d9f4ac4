// Package mnemonic implements BIP39 mnemonic generation, validation, and
// seed derivation, plus typo detection for hand-entered recovery phrases.
package mnemonic

import (
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/tyler-smith/go-bip39"
)

// validWordCounts are the BIP39-defined mnemonic lengths: 128/160/192/224/256
// bits of entropy encode to 12/15/18/21/24 words respectively.
var validWordCounts = map[int]int{
	12: 128,
	15: 160,
	18: 192,
	21: 224,
	24: 256,
}

var (
	// ErrInvalidWordCount indicates the mnemonic is not one of the five
	// BIP39 word counts (12, 15, 18, 21, 24).
	ErrInvalidWordCount = errors.New("mnemonic: word count must be 12, 15, 18, 21, or 24")

	// ErrInvalidMnemonic indicates a word is not in the wordlist, or the
	// checksum embedded in the final word does not match its entropy.
	ErrInvalidMnemonic = errors.New("mnemonic: invalid phrase or checksum")

	whitespaceRegex    = regexp.MustCompile(`\s+`)
	numberedListRegex  = regexp.MustCompile(`(?m)^\s*\d+[.):]\s*`)
	bulletListRegex    = regexp.MustCompile(`(?m)^\s*[-*•]\s*`)
)

// Generate creates a new BIP39 mnemonic phrase. wordCount must be 12 (128
// bits of entropy) or 24 (256 bits).
func Generate(wordCount int) (string, error) {
	bitSize, ok := validWordCounts[wordCount]
	if !ok {
		return "", ErrInvalidWordCount
	}

	entropy, err := bip39.NewEntropy(bitSize)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// Validate checks a mnemonic's word count, word membership, and checksum.
func Validate(phrase string) error {
	if phrase == "" {
		return ErrInvalidMnemonic
	}

	normalized := Normalize(phrase)
	words := strings.Fields(normalized)
	if _, ok := validWordCounts[len(words)]; !ok {
		return ErrInvalidWordCount
	}

	if !bip39.IsMnemonicValid(normalized) {
		return ErrInvalidMnemonic
	}
	return nil
}

// Normalize cleans hand-entered mnemonic input: lowercases it, strips
// numbered-list ("1.", "2)") and bullet ("-", "*", "•") prefixes a user might
// have pasted from notes, replaces commas with spaces, and collapses
// whitespace runs to single spaces.
func Normalize(input string) string {
	input = strings.ToLower(input)
	input = numberedListRegex.ReplaceAllString(input, " ")
	input = bulletListRegex.ReplaceAllString(input, " ")
	input = strings.ReplaceAll(input, ",", " ")
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// Seed derives the 64-byte BIP39 seed from a mnemonic and optional
// passphrase, via PBKDF2-HMAC-SHA512 with 2048 iterations over
// "mnemonic"+passphrase as salt. go-bip39 applies Unicode NFKD to both the
// mnemonic and the passphrase before deriving, per BIP39. The mnemonic must
// already be valid; callers should run Validate first.
func Seed(phrase, passphrase string) ([]byte, error) {
	normalized := Normalize(phrase)
	if !bip39.IsMnemonicValid(normalized) {
		return nil, ErrInvalidMnemonic
	}
	return bip39.NewSeed(normalized, passphrase), nil
}

// WordList returns the BIP39 English wordlist.
func WordList() []string {
	return bip39.GetWordList()
}

// IsValidWord reports whether word (case-insensitive) is in the BIP39
// wordlist.
func IsValidWord(word string) bool {
	_, ok := bip39.GetWordIndex(strings.ToLower(word))
	return ok
}

// MaxTypoDistance is the largest Levenshtein distance SuggestWord will still
// offer as a correction; beyond this the words are considered unrelated.
const MaxTypoDistance = 2

// Typo describes one word in a mnemonic phrase that was not found in the
// BIP39 wordlist, along with the closest valid word if one is near enough.
type Typo struct {
	Index      int
	Word       string
	Suggestion string
	Distance   int
}

// SuggestWord returns the closest BIP39 word to input, or "" if none is
// within MaxTypoDistance.
func SuggestWord(input string) string {
	input = strings.ToLower(input)
	minDist := math.MaxInt
	var best string
	for _, word := range bip39.GetWordList() {
		dist := levenshtein.ComputeDistance(input, word)
		if dist == 0 {
			return word
		}
		if dist < minDist {
			minDist = dist
			best = word
		}
	}
	if minDist <= MaxTypoDistance {
		return best
	}
	return ""
}

// DetectTypos scans a mnemonic and reports each word absent from the BIP39
// wordlist, with a correction suggestion where one is close enough.
func DetectTypos(phrase string) []Typo {
	if phrase == "" {
		return nil
	}
	words := strings.Fields(Normalize(phrase))
	var typos []Typo
	for i, word := range words {
		if IsValidWord(word) {
			continue
		}
		suggestion := SuggestWord(word)
		distance := 0
		if suggestion != "" {
			distance = levenshtein.ComputeDistance(word, suggestion)
		}
		typos = append(typos, Typo{Index: i, Word: word, Suggestion: suggestion, Distance: distance})
	}
	return typos
}
