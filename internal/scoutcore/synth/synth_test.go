package synth

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"scout/internal/scoutcore/facts"
	"scout/internal/scoutcore/llm"
)

type fakeClient struct {
	content string
	err     error
	calls   int
}

func (f *fakeClient) Call(ctx context.Context, req llm.Request) (llm.Response, error) {
	f.calls++
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Content: f.content, Model: req.Model}, nil
}

func sampleFacts() *facts.ModuleFacts {
	mf := facts.NewModuleFacts("pkg/widget.go")
	mf.Symbols.Set("Widget", facts.SymbolFact{Kind: facts.KindFunction, Name: "Widget", DefinedAt: 3})
	mf.Recompute()
	return mf
}

func TestSynthesize_NonCentralWritesOnlyTldr(t *testing.T) {
	root := t.TempDir()
	client := &fakeClient{content: "a short summary"}
	s := New(client, "gemini-2.5-flash", root)

	tldr, deep, err := s.Synthesize(context.Background(), sampleFacts(), false)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if tldr != "a short summary" {
		t.Errorf("expected tldr content, got %q", tldr)
	}
	if deep != "" {
		t.Errorf("expected no deep doc for non-central file, got %q", deep)
	}
	if client.calls != 1 {
		t.Errorf("expected exactly 1 LLM call for non-central file, got %d", client.calls)
	}

	localTldr := filepath.Join(root, "pkg", ".docs", "widget.go.tldr.md")
	if _, err := os.Stat(localTldr); err != nil {
		t.Errorf("expected local tldr sidecar to exist: %v", err)
	}
	centralTldr := filepath.Join(root, "docs", "livingDoc", "pkg", "widget.go.tldr.md")
	if _, err := os.Stat(centralTldr); err != nil {
		t.Errorf("expected central tldr mirror to exist: %v", err)
	}
}

func TestSynthesize_CentralWritesBothTiers(t *testing.T) {
	root := t.TempDir()
	client := &fakeClient{content: "summary text"}
	s := New(client, "gemini-2.5-flash", root)

	tldr, deep, err := s.Synthesize(context.Background(), sampleFacts(), true)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if tldr == "" || deep == "" {
		t.Fatalf("expected both tiers populated for central file, got tldr=%q deep=%q", tldr, deep)
	}
	if client.calls != 2 {
		t.Errorf("expected 2 LLM calls (tldr + deep) for central file, got %d", client.calls)
	}

	localDeep := filepath.Join(root, "pkg", ".docs", "widget.go.deep.md")
	if _, err := os.Stat(localDeep); err != nil {
		t.Errorf("expected local deep sidecar to exist: %v", err)
	}
}
