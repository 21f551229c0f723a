// Package sample generates a small bilingual PDF with text, two tables and a
// gradient image, used to exercise every extraction operation.
package sample

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/spherical/pdf-parser/internal/domain"
)

// FontEnv overrides the CJK font search.
const FontEnv = "PDF_PARSER_CJK_FONT"

// FontCandidates are tried in order after FontEnv. fpdf needs a plain
// TrueType file; .ttc collections are not supported.
var FontCandidates = []string{
	"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
	"/usr/share/fonts/truetype/arphic-gkai00mp/gkai00mp.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
	"C:/Windows/Fonts/simhei.ttf",
	"C:/Windows/Fonts/simfang.ttf",
}

// Sentences every generated document contains.
const (
	EnglishSentence = "This is a sample document for testing the PDF parsing tool."
	ChineseSentence = "这是一个用于测试PDF解析工具的示例文档。"
)

const (
	margin     = 72.0
	lineHeight = 14.0
	rowHeight  = 18.0
	cjkFamily  = "cjk"
)

var columnWidths = []float64{80, 100, 80, 100}

var peopleTable = [][]string{
	{"ID", "姓名", "年龄", "职业"},
	{"001", "张三", "28", "工程师"},
	{"002", "李四", "32", "设计师"},
	{"003", "王五", "45", "经理"},
	{"004", "赵六", "36", "销售"},
	{"005", "钱七", "29", "开发者"},
}

var peopleTableLatin = [][]string{
	{"ID", "Name", "Age", "Occupation"},
	{"001", "Zhang San", "28", "Engineer"},
	{"002", "Li Si", "32", "Designer"},
	{"003", "Wang Wu", "45", "Manager"},
	{"004", "Zhao Liu", "36", "Sales"},
	{"005", "Qian Qi", "29", "Developer"},
}

var salesTable = [][]string{
	{"季度", "销售额 (万元)", "增长率 (%)", "市场份额 (%)"},
	{"Q1 2024", "256.8", "12.5", "23.6"},
	{"Q2 2024", "312.4", "21.7", "25.8"},
	{"Q3 2024", "287.3", "-8.0", "24.2"},
	{"Q4 2024", "342.1", "19.1", "26.5"},
	{"总计", "1198.6", "11.3", "25.0"},
}

var salesTableLatin = [][]string{
	{"Quarter", "Sales (10k CNY)", "Growth (%)", "Share (%)"},
	{"Q1 2024", "256.8", "12.5", "23.6"},
	{"Q2 2024", "312.4", "21.7", "25.8"},
	{"Q3 2024", "287.3", "-8.0", "24.2"},
	{"Q4 2024", "342.1", "19.1", "26.5"},
	{"Total", "1198.6", "11.3", "25.0"},
}

const lorem = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Donec a diam lectus. " +
	"Sed sit amet ipsum mauris. Maecenas congue ligula ac quam viverra nec consectetur ante hendrerit. " +
	"Donec et mollis dolor. Praesent et diam eget libero egestas mattis sit amet vitae augue. " +
	"Nam tincidunt congue enim, ut porta lorem lacinia consectetur. " +
	"Donec ut libero sed arcu vehicula ultricies a non tortor. " +
	"Lorem ipsum dolor sit amet, consectetur adipiscing elit. Aenean ut gravida lorem. " +
	"Ut turpis felis, pulvinar a semper sed, adipiscing id dolor."

const chineseParagraph = "中文文本示例：这是一段中文文本，用于测试PDF解析工具对中文的支持情况。" +
	"PDF解析工具应该能够正确提取这段文本，并保持其格式和内容的完整性。" +
	"这段文本包含了标点符号、数字123和英文字母ABC等不同类型的字符。"

type settings struct {
	fontPath string
	logger   *domain.Logger
}

// Option configures Generate
type Option func(*settings)

// WithFont uses the TrueType file at path for Chinese text.
func WithFont(path string) Option {
	return func(s *settings) { s.fontPath = path }
}

// WithLogger sets the logger.
func WithLogger(logger *domain.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// FindCJKFont returns the first usable CJK font: FontEnv, then FontCandidates.
func FindCJKFont() (string, bool) {
	candidates := FontCandidates
	if env := strings.TrimSpace(os.Getenv(FontEnv)); env != "" {
		candidates = append([]string{env}, candidates...)
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// GradientImage builds a w×h opaque image: red follows the row, green the
// column and blue their sum.
func GradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			img.SetRGBA(j, i, color.RGBA{
				R: uint8(255 * i / h),
				G: uint8(255 * j / w),
				B: uint8(255 * (i + j) / (h + w)),
				A: 255,
			})
		}
	}
	return img
}

type writer struct {
	pdf    *fpdf.Fpdf
	cjk    bool
	logger *domain.Logger
}

// Generate writes the sample document to path. Without a CJK font the
// Chinese lines are skipped and the tables use Latin text.
func Generate(path string, opts ...Option) error {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = domain.DefaultLogger
	}
	logger := s.logger.WithPrefix("sample")

	if s.fontPath == "" {
		s.fontPath, _ = FindCJKFont()
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle("PDF Parser Sample", true)
	pdf.SetCreator("pdf-parser", true)

	w := &writer{pdf: pdf, logger: logger}
	if s.fontPath != "" {
		if err := loadFont(pdf, s.fontPath); err != nil {
			logger.Warn("cannot load CJK font %s: %v", s.fontPath, err)
		} else {
			w.cjk = true
		}
	}
	if !w.cjk {
		logger.Warn("no CJK font found (set %s), Chinese text will be skipped", FontEnv)
	}

	pdf.AddPage()
	w.build()

	if err := pdf.OutputFileAndClose(path); err != nil {
		return domain.IOError(fmt.Sprintf("Failed to write sample PDF %s", path), err)
	}
	logger.Info("Sample PDF written to %s", path)
	return nil
}

// loadFont registers the TrueType file at path as the CJK family. The bytes
// are read here because fpdf joins file names onto its font directory, which
// would turn an absolute path into a relative one.
func loadFont(pdf *fpdf.Fpdf, path string) (err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse font: %v", r)
			pdf.ClearError()
		}
	}()

	pdf.AddUTF8FontFromBytes(cjkFamily, "", data)
	if pdf.Err() {
		err = pdf.Error()
		pdf.ClearError()
	}
	return err
}

func (w *writer) build() {
	if w.cjk {
		w.heading("PDF解析工具示例文档", 20)
	} else {
		w.latinHeading("PDF Parsing Tool Sample Document", 20)
	}
	w.pdf.Ln(lineHeight)

	w.chinese(ChineseSentence)
	w.chinese("它包含了文本、表格和图片等不同类型的内容。")
	w.pdf.Ln(lineHeight / 2)

	w.english(EnglishSentence)
	w.english("It contains different types of content including text, tables, and images.")
	w.pdf.Ln(lineHeight)

	w.section("1. 文本内容示例", "1. Text Content")
	w.english(lorem)
	w.pdf.Ln(lineHeight)
	w.chinese(chineseParagraph)
	w.pdf.Ln(lineHeight)

	w.section("2. 表格示例", "2. Tables")
	if w.cjk {
		w.table(peopleTable, [3]int{128, 128, 128}, [3]int{245, 245, 220})
	} else {
		w.table(peopleTableLatin, [3]int{128, 128, 128}, [3]int{245, 245, 220})
	}
	w.pdf.Ln(lineHeight)

	if w.cjk {
		w.chinese("数据统计表格：")
	} else {
		w.english("Statistics table:")
	}
	w.pdf.Ln(lineHeight / 2)
	if w.cjk {
		w.table(salesTable, [3]int{0, 0, 255}, [3]int{255, 255, 255})
	} else {
		w.table(salesTableLatin, [3]int{0, 0, 255}, [3]int{255, 255, 255})
	}
	w.pdf.Ln(lineHeight)

	w.section("3. 图片示例", "3. Images")
	w.gradient(400, 300)
	w.pdf.Ln(lineHeight / 2)
	if w.cjk {
		w.chinese("图1：示例图片 - 彩色渐变")
	} else {
		w.english("Figure 1: sample image - colour gradient")
	}
	w.pdf.Ln(lineHeight)

	w.chinese("这个PDF文件包含了文本、表格和图片等不同类型的内容，可以用来测试PDF解析工具的各种功能。")
	w.pdf.Ln(lineHeight / 2)
	w.chinese("如果您能看到这段文字，说明PDF已经成功生成。")
}

func (w *writer) english(text string) {
	w.pdf.SetFont("Helvetica", "", 12)
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.MultiCell(0, lineHeight, text, "", "L", false)
}

func (w *writer) chinese(text string) {
	if !w.cjk {
		w.logger.Debug("skipping Chinese line: %s", text)
		return
	}
	w.pdf.SetFont(cjkFamily, "", 12)
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.MultiCell(0, lineHeight, text, "", "L", false)
}

func (w *writer) heading(text string, size float64) {
	w.pdf.SetFont(cjkFamily, "", size)
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.MultiCell(0, size*1.2, text, "", "L", false)
}

func (w *writer) latinHeading(text string, size float64) {
	w.pdf.SetFont("Helvetica", "B", size)
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.MultiCell(0, size*1.2, text, "", "L", false)
}

func (w *writer) section(chinese, latin string) {
	if w.cjk {
		w.heading(chinese, 16)
	} else {
		w.latinHeading(latin, 16)
	}
	w.pdf.Ln(lineHeight / 2)
}

// table draws a bordered grid; the header row is filled with headerFill and
// white text, the body with bodyFill.
func (w *writer) table(rows [][]string, headerFill, bodyFill [3]int) {
	_, pageHeight := w.pdf.GetPageSize()
	if w.pdf.GetY()+float64(len(rows))*rowHeight > pageHeight-margin {
		w.pdf.AddPage()
	}

	if w.cjk {
		w.pdf.SetFont(cjkFamily, "", 11)
	} else {
		w.pdf.SetFont("Helvetica", "", 11)
	}
	w.pdf.SetDrawColor(0, 0, 0)

	for r, row := range rows {
		if r == 0 {
			w.pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
			w.pdf.SetTextColor(255, 255, 255)
		} else {
			w.pdf.SetFillColor(bodyFill[0], bodyFill[1], bodyFill[2])
			w.pdf.SetTextColor(0, 0, 0)
		}
		for c, cell := range row {
			ln := 0
			if c == len(row)-1 {
				ln = 1
			}
			w.pdf.CellFormat(columnWidths[c], rowHeight, cell, "1", ln, "C", true, 0, "")
		}
	}
	w.pdf.SetTextColor(0, 0, 0)
}

func (w *writer) gradient(width, height int) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, GradientImage(width, height)); err != nil {
		w.logger.Warn("cannot encode sample image: %v", err)
		return
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	w.pdf.RegisterImageOptionsReader("gradient", opts, &buf)
	w.pdf.ImageOptions("gradient", margin, w.pdf.GetY(), float64(width), float64(height), true, opts, 0, "")
}
