package card

import (
	"bytes"
	"fmt"
	"os"

	"github.com/prem22k/c3-backend/logger"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	margin     = 6.0
	headerH    = 30.0
	rowsTop    = 54.0
	rowH       = 9.0
	qrSize     = 26.0
	footerBand = 6.0
)

type Renderer struct {
	theme     Theme
	verifyURL string
	tempDir   string
}

// NewRenderer builds a renderer. verifyURL is prefixed to the registration ID
// in the QR code; tempDir defaults to the OS temp directory.
func NewRenderer(theme Theme, verifyURL, tempDir string) *Renderer {
	return &Renderer{theme: theme, verifyURL: verifyURL, tempDir: tempDir}
}

func (r *Renderer) Theme() Theme { return r.theme }

// Render draws a single-page membership card and returns the PDF bytes.
func (r *Renderer) Render(d Data) ([]byte, error) {
	t := r.theme

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: t.Width, Ht: t.Height},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(t.Title, true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// --- Background + header band ---
	fill(pdf, t.Background)
	pdf.Rect(0, 0, t.Width, t.Height, "F")
	fill(pdf, t.Header)
	pdf.Rect(0, 0, t.Width, headerH, "F")

	// --- Logos ---
	r.drawLogo(pdf, t.LogoLeft, false)
	r.drawLogo(pdf, t.LogoRight, true)

	// --- Title ---
	pdf.SetTextColor(t.Value.R, t.Value.G, t.Value.B)
	pdf.SetFont(t.HeadingFont.Family, t.HeadingFont.Style, t.HeadingFont.Size)
	pdf.SetXY(margin, headerH+3)
	pdf.CellFormat(t.Width-2*margin, 7, tr(t.Title), "", 1, "C", false, 0, "")
	pdf.SetFont(t.BodyFont.Family, t.BodyFont.Style, t.BodyFont.Size-2)
	pdf.SetTextColor(t.Label.R, t.Label.G, t.Label.B)
	pdf.SetX(margin)
	pdf.CellFormat(t.Width-2*margin, 5, tr(t.Subtitle), "", 1, "C", false, 0, "")

	fill(pdf, t.Accent)
	pdf.Rect(margin, rowsTop-5, t.Width-2*margin, 1.2, "F")

	// --- Detail rows ---
	valueW := t.Width - 2*margin
	for i, row := range d.rows() {
		y := rowsTop + float64(i)*rowH

		pdf.SetFont(t.HeadingFont.Family, t.HeadingFont.Style, 6.5)
		pdf.SetTextColor(t.Label.R, t.Label.G, t.Label.B)
		pdf.SetXY(margin, y)
		pdf.CellFormat(valueW, 3.5, row[0], "", 0, "L", false, 0, "")

		value := tr(row[1])
		size := t.BodyFont.Size
		pdf.SetFont(t.BodyFont.Family, t.BodyFont.Style, size)
		for size > 6 && pdf.GetStringWidth(value) > valueW {
			size -= 0.5
			pdf.SetFont(t.BodyFont.Family, t.BodyFont.Style, size)
		}
		pdf.SetTextColor(t.Value.R, t.Value.G, t.Value.B)
		pdf.SetXY(margin, y+3.5)
		pdf.CellFormat(valueW, 5, value, "", 0, "L", false, 0, "")
	}

	// --- QR ---
	qrContent := r.verifyURL + d.RegistrationID
	if qrContent == "" {
		qrContent = d.Email
	}
	qrBytes, err := qrcode.Encode(qrContent, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("%w: qr encode: %v", ErrCardGeneration, err)
	}
	qrName := "qr-" + d.RegistrationID
	pdf.RegisterImageOptionsReader(qrName, gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(qrBytes))
	qrY := rowsTop + 5*rowH + 2
	pdf.ImageOptions(qrName, (t.Width-qrSize)/2, qrY, qrSize, qrSize, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")

	// --- Footer ---
	fill(pdf, t.Header)
	pdf.Rect(0, t.Height-footerBand, t.Width, footerBand, "F")
	pdf.SetFont(t.BodyFont.Family, t.BodyFont.Style, 6)
	pdf.SetTextColor(t.HeaderText.R, t.HeaderText.G, t.HeaderText.B)
	pdf.SetXY(0, t.Height-footerBand)
	pdf.CellFormat(t.Width, footerBand, tr(t.Footer), "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCardGeneration, err)
	}
	return buf.Bytes(), nil
}

// WriteTemp renders the card into a temporary file. The caller removes it.
func (r *Renderer) WriteTemp(d Data) (string, error) {
	pdfBytes, err := r.Render(d)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp(r.tempDir, "c3-card-*.pdf")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCardGeneration, err)
	}

	_, err = f.Write(pdfBytes)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("%w: %v", ErrCardGeneration, err)
	}
	return f.Name(), nil
}

// drawLogo places a logo inside the header band, left or right aligned.
// Missing or unreadable files are skipped.
func (r *Renderer) drawLogo(pdf *gofpdf.Fpdf, path string, alignRight bool) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		logger.Log.Warn(fmt.Sprintf("[card] Logo %s not found, skipping: %v", path, err))
		return
	}

	info := pdf.RegisterImageOptions(path, gofpdf.ImageOptions{})
	if !pdf.Ok() || info == nil {
		logger.Log.Warn(fmt.Sprintf("[card] Logo %s could not be loaded: %v", path, pdf.Error()))
		pdf.ClearError()
		return
	}

	w, h := FitBox(info.Width(), info.Height(), r.theme.LogoMaxW, r.theme.LogoMaxH)
	x := margin
	if alignRight {
		x = r.theme.Width - margin - w
	}
	y := (headerH - h) / 2
	pdf.ImageOptions(path, x, y, w, h, false, gofpdf.ImageOptions{}, 0, "")
}

func fill(pdf *gofpdf.Fpdf, c Color) {
	pdf.SetFillColor(c.R, c.G, c.B)
}
