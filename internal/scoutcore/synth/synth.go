// Package synth implements the Doc Synthesizer: it turns a file's
// deterministic facts into short, flash-tier-generated prose (.tldr.md,
// and .deep.md when the file is "central"), written atomically next to
// the source and mirrored to a central living-doc tree.
package synth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scout/internal/logging"
	"scout/internal/scoutcore/facts"
	"scout/internal/scoutcore/llm"
)

// Client is the subset of llm.Client the synthesizer needs.
type Client interface {
	Call(ctx context.Context, req llm.Request) (llm.Response, error)
}

// Synthesizer generates and persists tiered documentation for one source
// file at a time.
type Synthesizer struct {
	client      Client
	flashModel  string
	repoRoot    string
	livingDocDir string
}

// New builds a Synthesizer rooted at repoRoot, mirroring generated docs
// under repoRoot/docs/livingDoc.
func New(client Client, flashModel, repoRoot string) *Synthesizer {
	return &Synthesizer{
		client:       client,
		flashModel:   flashModel,
		repoRoot:     repoRoot,
		livingDocDir: filepath.Join(repoRoot, "docs", "livingDoc"),
	}
}

// Synthesize always produces tldr and produces deep only when central is
// true. central is decided by the caller; sync.Engine sets it when a
// depth-2 graph BFS from the file reaches more nodes than a depth-1 BFS.
func (s *Synthesizer) Synthesize(ctx context.Context, mf *facts.ModuleFacts, central bool) (tldr, deep string, err error) {
	tldr, err = s.callFlash(ctx, mf, tldrPrompt(mf))
	if err != nil {
		return "", "", fmt.Errorf("synth: tldr generation failed for %s: %w", mf.Path, err)
	}

	if err := s.writeTiered(mf.Path, "tldr", tldr); err != nil {
		return "", "", fmt.Errorf("synth: write tldr failed for %s: %w", mf.Path, err)
	}

	if !central {
		return tldr, "", nil
	}

	deep, err = s.callFlash(ctx, mf, deepPrompt(mf))
	if err != nil {
		logging.SynthWarn("synth: deep generation failed for %s, keeping tldr only: %v", mf.Path, err)
		return tldr, "", nil
	}

	if err := s.writeTiered(mf.Path, "deep", deep); err != nil {
		return tldr, "", fmt.Errorf("synth: write deep failed for %s: %w", mf.Path, err)
	}

	return tldr, deep, nil
}

func (s *Synthesizer) callFlash(ctx context.Context, mf *facts.ModuleFacts, prompt string) (string, error) {
	resp, err := s.client.Call(ctx, llm.Request{
		Prompt:    prompt,
		MaxTokens: 1024,
		Model:     s.flashModel,
		TaskType:  "doc_synthesis",
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

// writeTiered atomically writes content to both the local sidecar
// (<dir>/.docs/<base>.<tier>.md) and the central mirror
// (docs/livingDoc/<relPath>.<tier>.md).
func (s *Synthesizer) writeTiered(relPath, tier, content string) error {
	local := filepath.Join(s.repoRoot, filepath.Dir(relPath), ".docs", filepath.Base(relPath)+"."+tier+".md")
	central := filepath.Join(s.livingDocDir, relPath+"."+tier+".md")

	for _, path := range []string{local, central} {
		if err := atomicWrite(path, content); err != nil {
			return err
		}
	}
	return nil
}

func atomicWrite(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-synth-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

func tldrPrompt(mf *facts.ModuleFacts) string {
	var sb strings.Builder
	sb.WriteString("Write a two-to-three sentence summary of this source file, grounded only in the facts below. No speculation about behavior not shown.\n\n")
	sb.WriteString(renderFacts(mf))
	return sb.String()
}

func deepPrompt(mf *facts.ModuleFacts) string {
	var sb strings.Builder
	sb.WriteString("Write a detailed walkthrough of this source file's symbols and control flow, grounded only in the facts below. Cover every exported symbol.\n\n")
	sb.WriteString(renderFacts(mf))
	return sb.String()
}

func renderFacts(mf *facts.ModuleFacts) string {
	var sb strings.Builder
	sb.WriteString("File: " + mf.Path + "\n")
	for _, name := range mf.Symbols.Names() {
		sym, _ := mf.Symbols.Get(name)
		sb.WriteString(fmt.Sprintf("- %s %s defined_at=%d used_at=%v\n", sym.Kind, sym.Name, sym.DefinedAt, sym.UsedAt))
	}
	for _, cf := range mf.ControlFlow {
		sb.WriteString(fmt.Sprintf("- scope=%s loops=%d guards=%d raises=%d\n", cf.Scope, cf.Loops, len(cf.Guards), len(cf.Raises)))
	}
	return sb.String()
}
