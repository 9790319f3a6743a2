package extract

import "testing"

func TestTreeSitterExtractor_TwoFunctionPythonFileFacts(t *testing.T) {
	content := []byte("def a():\n pass\ndef b():\n a()\n")

	e := NewTreeSitterExtractor(languagePython)
	mf, err := e.Extract("sample.py", content)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	a, ok := mf.Symbols.Get("a")
	if !ok {
		t.Fatal("expected symbol 'a'")
	}
	if a.Kind != "function" || a.DefinedAt != 1 {
		t.Errorf("expected a={function,1}, got %+v", a)
	}
	if len(a.UsedAt) != 1 || a.UsedAt[0] != 4 {
		t.Errorf("expected a.used_at=[4], got %v", a.UsedAt)
	}

	b, ok := mf.Symbols.Get("b")
	if !ok {
		t.Fatal("expected symbol 'b'")
	}
	if b.Kind != "function" || b.DefinedAt != 3 {
		t.Errorf("expected b={function,3}, got %+v", b)
	}
	if len(b.UsedAt) != 0 {
		t.Errorf("expected b.used_at=[], got %v", b.UsedAt)
	}
}
