package embed

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxSeqLen = 128

// tokenized holds a batch ready for ONNX inference. All slices are flat
// [batchSize * seqLen], padded to the longest sequence in the batch.
type tokenized struct {
	inputIDs      []int64
	attentionMask []int64
	tokenTypeIDs  []int64
	batchSize     int64
	seqLen        int64
}

// tokenizer performs lowercase WordPiece tokenization. Violation messages
// are ASCII-heavy tool output, so no CJK-specific handling is needed.
type tokenizer struct {
	tokenToID map[string]int64

	padID int64
	unkID int64
	clsID int64
	sepID int64
}

// newTokenizer loads a vocab.txt file where each line is a token and the
// zero-indexed line number is the token id.
func newTokenizer(vocabPath string) (*tokenizer, error) {
	f, err := os.Open(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: %w", err)
	}
	defer f.Close()

	tokenToID := make(map[string]int64, 32000)
	var count int64

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		tokenToID[scanner.Text()] = count
		count++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("tokenizer: read vocab: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("tokenizer: vocab file is empty: %s", vocabPath)
	}

	t := &tokenizer{tokenToID: tokenToID}
	specials := []struct {
		name string
		dest *int64
	}{
		{"[PAD]", &t.padID},
		{"[UNK]", &t.unkID},
		{"[CLS]", &t.clsID},
		{"[SEP]", &t.sepID},
	}
	for _, s := range specials {
		id, ok := tokenToID[s.name]
		if !ok {
			return nil, fmt.Errorf("tokenizer: vocab missing special token %s", s.name)
		}
		*s.dest = id
	}
	return t, nil
}

func (t *tokenizer) lookup(token string) int64 {
	if id, ok := t.tokenToID[token]; ok {
		return id
	}
	return t.unkID
}

func (t *tokenizer) contains(token string) bool {
	_, ok := t.tokenToID[token]
	return ok
}

// tokenize converts one text into padded id/mask slices of length
// maxSeqLen, wrapped in [CLS] and [SEP].
func (t *tokenizer) tokenize(text string) (ids, mask []int64) {
	tokens := t.wordpiece(basicTokenize(text))

	maxTokens := maxSeqLen - 2
	if len(tokens) > maxTokens {
		tokens = tokens[:maxTokens]
	}

	ids = make([]int64, maxSeqLen)
	mask = make([]int64, maxSeqLen)

	ids[0] = t.clsID
	mask[0] = 1
	for i, tok := range tokens {
		ids[i+1] = t.lookup(tok)
		mask[i+1] = 1
	}
	ids[len(tokens)+1] = t.sepID
	mask[len(tokens)+1] = 1
	// Remaining positions stay zero: padID, mask off.

	return ids, mask
}

// tokenizeBatch packs multiple texts into flat slices padded to the
// longest sequence in the batch, capped at maxSeqLen.
func (t *tokenizer) tokenizeBatch(texts []string) tokenized {
	n := len(texts)
	if n == 0 {
		return tokenized{}
	}

	type seq struct {
		ids  []int64
		mask []int64
	}
	seqs := make([]seq, n)
	maxLen := int64(0)

	for i, text := range texts {
		ids, mask := t.tokenize(text)
		realLen := int64(0)
		for _, m := range mask {
			if m == 1 {
				realLen++
			}
		}
		seqs[i] = seq{ids: ids, mask: mask}
		if realLen > maxLen {
			maxLen = realLen
		}
	}

	batchSize := int64(n)
	seqLen := maxLen
	total := batchSize * seqLen

	out := tokenized{
		inputIDs:      make([]int64, total),
		attentionMask: make([]int64, total),
		tokenTypeIDs:  make([]int64, total),
		batchSize:     batchSize,
		seqLen:        seqLen,
	}
	for i, s := range seqs {
		offset := int64(i) * seqLen
		copy(out.inputIDs[offset:offset+seqLen], s.ids[:seqLen])
		copy(out.attentionMask[offset:offset+seqLen], s.mask[:seqLen])
	}
	return out
}

// basicTokenize cleans, lowercases, strips accents, and splits on
// whitespace and punctuation.
func basicTokenize(text string) []string {
	text = cleanText(text)
	text = strings.ToLower(text)
	text = stripAccents(text)

	var tokens []string
	for _, word := range strings.Fields(text) {
		tokens = append(tokens, splitOnPunctuation(word)...)
	}
	return tokens
}

// wordpiece decomposes basic tokens into subwords by greedy longest
// match; continuation pieces carry the "##" prefix.
func (t *tokenizer) wordpiece(tokens []string) []string {
	var result []string
	for _, token := range tokens {
		if len(token) == 0 {
			continue
		}
		result = append(result, t.wordpieceToken(token)...)
	}
	return result
}

func (t *tokenizer) wordpieceToken(token string) []string {
	runes := []rune(token)
	if len(runes) > 200 {
		return []string{"[UNK]"}
	}

	var subTokens []string
	start := 0
	for start < len(runes) {
		end := len(runes)
		found := false
		for end > start {
			sub := string(runes[start:end])
			if start > 0 {
				sub = "##" + sub
			}
			if t.contains(sub) {
				subTokens = append(subTokens, sub)
				found = true
				break
			}
			end--
		}
		if !found {
			return []string{"[UNK]"}
		}
		start = end
	}
	return subTokens
}

// cleanText drops control characters and collapses whitespace runes to
// plain spaces.
func cleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == 0 || r == 0xFFFD || isControl(r) {
			continue
		}
		if isWhitespace(r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripAccents removes combining marks after NFD normalization.
func stripAccents(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range norm.NFD.String(text) {
		if unicode.In(r, unicode.Mn) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func splitOnPunctuation(word string) []string {
	var tokens []string
	var current strings.Builder
	for _, r := range word {
		if isPunctuation(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			tokens = append(tokens, string(r))
		} else {
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func isWhitespace(r rune) bool {
	if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.IsControl(r)
}

func isPunctuation(r rune) bool {
	// ASCII ranges 33-47, 58-64, 91-96, 123-126 count as punctuation in
	// addition to the Unicode punctuation categories.
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) ||
		(r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}
