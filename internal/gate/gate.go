// Package gate redacts a random subset of an article's content blocks and
// parks them in the keyed store behind single-use, time-bound reveal tokens.
// A reader gets the redacted blocks back by passing a human-verification
// challenge; scrapers get placeholders.
package gate

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"go-blog-app/internal/apperr"
)

const (
	// keyPrefix namespaces gated-content keys in the keyed store.
	keyPrefix = "protected_content:"
	// unitTTL bounds how long a redacted block stays recoverable.
	unitTTL = 1200 * time.Second
)

// Store is the slice of the keyed store the gating engine needs.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Unit is a redacted content block: the block-level tag it came from and its
// original inner HTML, byte-identical to what was removed.
type Unit struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

// Engine applies and resolves content gating.
type Engine struct {
	store   Store
	siteKey string
}

// New creates a gating Engine. siteKey is embedded in every placeholder so
// the client can render the verification widget.
func New(store Store, siteKey string) *Engine {
	return &Engine{store: store, siteKey: siteKey}
}

// Gate scans rendered article HTML for paragraph and preformatted blocks,
// redacts a count-dependent random subset and returns the display HTML plus
// the reveal token ids in document order. Input with fewer than two eligible
// blocks is returned unchanged.
//
// Block selection is uniform random without replacement and deliberately not
// reproducible across calls; two renders of the same article hide different
// blocks.
func (e *Engine) Gate(ctx context.Context, input string) (string, []string, error) {
	segments, blockCount := scanBlocks(input)
	redact := redactionCount(blockCount)
	if redact == 0 {
		return input, nil, nil
	}

	chosen := pickIndices(blockCount, redact)

	var out strings.Builder
	var tokens []string
	for _, seg := range segments {
		if seg.blockIndex < 0 || !chosen[seg.blockIndex] {
			out.WriteString(seg.text)
			continue
		}
		unit := Unit{Tag: seg.tag, Content: seg.inner}
		payload, err := json.Marshal(unit)
		if err != nil {
			return "", nil, apperr.Storagef(err, "encoding gated unit")
		}
		id := strings.ReplaceAll(uuid.NewString(), "-", "")
		if err := e.store.Set(ctx, keyPrefix+id, string(payload), unitTTL); err != nil {
			return "", nil, err
		}
		tokens = append(tokens, id)
		out.WriteString(placeholder(id, e.siteKey))
	}
	return out.String(), tokens, nil
}

// Resolve exchanges reveal token ids for their original content units,
// consuming each unit so a token works at most once. Ids with no stored unit
// are silently skipped. Calling Resolve without a positive verification
// result is a precondition failure.
func (e *Engine) Resolve(ctx context.Context, ids []string, verified bool) ([]Unit, error) {
	if !verified {
		return nil, apperr.Verification("human verification required")
	}
	var units []Unit
	for _, id := range ids {
		key := keyPrefix + id
		payload, ok, err := e.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := e.store.Delete(ctx, key); err != nil {
			return nil, err
		}
		var unit Unit
		if err := json.Unmarshal([]byte(payload), &unit); err != nil {
			// A corrupted unit is unrecoverable; treat like a miss.
			continue
		}
		units = append(units, unit)
	}
	return units, nil
}

// redactionCount is the step function mapping eligible block count to the
// number of blocks to hide. The cap keeps the cost to genuine readers at
// three challenges per article.
func redactionCount(blocks int) int {
	switch {
	case blocks < 2:
		return 0
	case blocks <= 4:
		return 1
	case blocks <= 8:
		return 2
	default:
		return 3
	}
}

// pickIndices draws count distinct indices from [0, n) uniformly, retrying
// on collision.
func pickIndices(n, count int) map[int]bool {
	chosen := make(map[int]bool, count)
	for len(chosen) < count {
		chosen[rand.IntN(n)] = true
	}
	return chosen
}

func placeholder(id, siteKey string) string {
	return fmt.Sprintf(
		`<div class="protected-content" data-id="%s"><div class="h-captcha" data-sitekey="%s"></div></div>`,
		id, siteKey)
}

// segment is a run of the input document: either verbatim text
// (blockIndex < 0) or the blockIndex-th eligible block.
type segment struct {
	text       string
	blockIndex int
	tag        string
	inner      string
}

// gatedTags is the fixed set of block-level tags eligible for redaction.
var gatedTags = map[string]bool{"p": true, "pre": true}

// scanBlocks tokenizes the input and splits it into verbatim runs and
// eligible blocks, preserving document order and raw bytes. Nested occurrences
// of the same tag stay inside their outermost block.
func scanBlocks(input string) ([]segment, int) {
	tokenizer := html.NewTokenizerFragment(strings.NewReader(input), "body")

	var segments []segment
	var plain strings.Builder

	var inTag string
	var depth int
	var block strings.Builder
	var inner strings.Builder
	blockCount := 0

	flushPlain := func() {
		if plain.Len() > 0 {
			segments = append(segments, segment{text: plain.String(), blockIndex: -1})
			plain.Reset()
		}
	}

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := string(tokenizer.Raw())
		tagName, _ := tokenizer.TagName()
		tag := string(tagName)

		switch {
		case inTag == "" && tt == html.StartTagToken && gatedTags[tag]:
			flushPlain()
			inTag = tag
			depth = 1
			block.Reset()
			inner.Reset()
			block.WriteString(raw)
		case inTag != "":
			if tt == html.StartTagToken && tag == inTag {
				depth++
			}
			if tt == html.EndTagToken && tag == inTag {
				depth--
				if depth == 0 {
					block.WriteString(raw)
					segments = append(segments, segment{
						text:       block.String(),
						blockIndex: blockCount,
						tag:        inTag,
						inner:      inner.String(),
					})
					blockCount++
					inTag = ""
					continue
				}
			}
			block.WriteString(raw)
			inner.WriteString(raw)
		default:
			plain.WriteString(raw)
		}
	}
	// An unterminated block is re-emitted verbatim rather than gated.
	if inTag != "" {
		plain.WriteString(block.String())
	}
	flushPlain()
	return segments, blockCount
}
