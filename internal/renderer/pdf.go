package renderer

import (
	"bytes"
	"fmt"
)

// PageRenderer is the external collaborator's interface: a pure function
// Notebook -> bytes, treated as out of scope per spec §1. minimalRenderer
// below is the bundled default — a structurally valid, content-free PDF
// with one blank page per `.rm` file, good enough to exercise the rest of
// the read path without depending on the real stroke-to-vector codec.
type PageRenderer interface {
	Render(nb *Notebook) ([]byte, error)
}

// minimalRenderer emits one empty page per notebook page. It never
// inspects the `.rm` file contents; a real renderer is expected to
// replace it entirely.
type minimalRenderer struct{}

// NewMinimalRenderer returns the bundled placeholder PageRenderer.
func NewMinimalRenderer() PageRenderer { return minimalRenderer{} }

func (minimalRenderer) Render(nb *Notebook) ([]byte, error) {
	n := len(nb.Pages)
	if n == 0 {
		n = 1
	}
	return buildBlankPDF(n), nil
}

// buildBlankPDF writes a minimal, spec-valid PDF with n blank US-Letter
// pages. It exists only so the filesystem always has something readable
// to return for a DocumentType entry before a real renderer is wired in.
func buildBlankPDF(n int) []byte {
	var buf bytes.Buffer
	offsets := make([]int, 0, n+3)

	write := func(s string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(s)
	}

	buf.WriteString("%PDF-1.4\n")
	offsets = append(offsets, buf.Len())
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := ""
	for i := 0; i < n; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	write(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [ %s] /Count %d >>\nendobj\n", kids, n))

	for i := 0; i < n; i++ {
		write(fmt.Sprintf(
			"%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n",
			3+i,
		))
	}

	xrefStart := buf.Len()
	total := len(offsets) + 1
	buf.WriteString(fmt.Sprintf("xref\n0 %d\n", total))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		buf.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}
	buf.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF",
		total, xrefStart))

	return buf.Bytes()
}
