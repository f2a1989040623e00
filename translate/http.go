// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AshBuk/streamcast-engine/pipeline"
)

// HTTPProvider is the default Provider adapter: a configurable JSON
// translation endpoint reached with the standard library's net/http,
// in the same raw request/response idiom used elsewhere in the stack
// for LLM HTTP calls (no vendor SDK for a simple POST-JSON-get-JSON
// call). The wire contract is a plain {text, source, target} POST
// returning {"pairs": [{"source": "...", "target": "..."}]} — the
// concrete wire format of any specific third-party translation service
// is explicitly out of scope for this engine (see spec's HTTP-client
// non-goal); this is the pluggable point where such an adapter would
// instead sit.
type HTTPProvider struct {
	Endpoint string
	Client   *http.Client
}

// NewHTTPProvider constructs a provider against endpoint, defaulting
// the HTTP client when none is supplied.
func NewHTTPProvider(endpoint string) *HTTPProvider {
	return &HTTPProvider{
		Endpoint: endpoint,
		Client:   &http.Client{},
	}
}

type httpTranslateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type httpTranslateResponse struct {
	Pairs []struct {
		Source string `json:"source"`
		Target string `json:"target"`
	} `json:"pairs"`
}

// Translate implements Provider.
func (p *HTTPProvider) Translate(ctx context.Context, text, source, target string, timeout time.Duration) ([]SentencePair, error) {
	if text == "" {
		return nil, nil
	}

	reqBody, err := json.Marshal(httpTranslateRequest{Text: text, Source: source, Target: target})
	if err != nil {
		return nil, fmt.Errorf("failed to encode translation request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint := p.Endpoint
	if parsed, err := url.Parse(endpoint); err != nil || parsed.Scheme == "" {
		return nil, fmt.Errorf("invalid translation provider endpoint: %s", endpoint)
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build translation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translation provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translation provider returned status %d", resp.StatusCode)
	}

	var parsed httpTranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode translation response: %w", err)
	}

	pairs := make([]SentencePair, 0, len(parsed.Pairs))
	for _, p := range parsed.Pairs {
		pairs = append(pairs, SentencePair{Source: p.Source, Target: p.Target})
	}
	return pairs, nil
}

// httpStageState is the per-session state for HTTP-mode translation:
// the reserve prefix held back across updates (spec §4.5.1).
type httpStageState struct {
	reserve string
}

// processHTTPUpdate implements spec §4.5.1 steps 1-3 for a single Pair
// update. It never returns an error: provider failures are recoverable
// and substituted with ErrorMarker.
func (s *Stage) processHTTPUpdate(ctx context.Context, confirmedSrc, draftSrc string) pipeline.Pair {
	var confirmedTgt string

	if confirmedSrc != "" || s.http.reserve != "" {
		combined := s.http.reserve + confirmedSrc
		pairs, err := s.provider.Translate(ctx, combined, s.cfg.SourceLanguage, s.cfg.TargetLanguage, s.cfg.Timeout)
		if err != nil {
			s.logger.Warning("translation provider failed: %v", err)
			confirmedTgt = ErrorMarker
			// Reserve is left untouched: we could not confirm whether the
			// prior prefix was consumed, so it is retried on the next update.
		} else {
			switch len(pairs) {
			case 0:
				confirmedTgt = ""
				s.http.reserve = ""
			case 1:
				confirmedTgt = pairs[0].Target
				s.http.reserve = ""
			default:
				last := pairs[len(pairs)-1]
				s.http.reserve = last.Source
				var b strings.Builder
				for _, pair := range pairs[:len(pairs)-1] {
					b.WriteString(pair.Target)
				}
				confirmedTgt = b.String()
			}
		}
	}

	var draftTgt string
	draftCombined := s.http.reserve + draftSrc
	if draftCombined != "" {
		pairs, err := s.provider.Translate(ctx, draftCombined, s.cfg.SourceLanguage, s.cfg.TargetLanguage, s.cfg.Timeout)
		if err != nil {
			s.logger.Warning("translation provider failed on draft: %v", err)
			draftTgt = ErrorMarker
		} else {
			var b strings.Builder
			for _, pair := range pairs {
				b.WriteString(pair.Target)
			}
			draftTgt = b.String()
		}
	}

	return pipeline.Pair{Confirmed: confirmedTgt, Draft: draftTgt}
}
