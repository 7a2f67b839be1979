package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/jung-kurt/gofpdf"
)

const (
	regularFont = "DejaVuSans.ttf"
	boldFont    = "DejaVuSans-Bold.ttf"
)

// Generator формирует PDF отчет по результату попытки
type Generator struct {
	fontDir string
}

// NewGenerator создает новый экземпляр Generator.
// fontDir - каталог со шрифтами DejaVu. Без них используется встроенный Helvetica (только латиница).
func NewGenerator(fontDir string) *Generator {
	return &Generator{fontDir: fontDir}
}

// FileName - имя файла отчета для отправки документом
func FileName(result *model.SubmissionResult) string {
	return fmt.Sprintf("result_%d.pdf", result.ID)
}

// GeneratePDFReport генерирует PDF отчет и возвращает его содержимое.
// Отчет формируется в виде непрерывного текста с переносами (без таблицы).
func (g *Generator) GeneratePDFReport(result *model.SubmissionResult) ([]byte, error) {
	const op = "report.GeneratePDFReport"

	pdf := gofpdf.New("P", "mm", "A4", "")
	family, tr := g.setupFonts(pdf)

	pdf.AddPage()

	pdf.SetFont(family, "B", 16)
	pdf.MultiCell(0, 10, tr("Результат: "+result.TestCard.Name), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont(family, "", 12)
	info := fmt.Sprintf("Баллы: %.2f\nПроцент: %.1f%% (%s)\nТочность: %.1f%%\n",
		result.Score, result.Percentage, model.Grade(result.Percentage), result.PerformanceAnalysis.Accuracy)
	if result.FinishedAt != nil {
		info += "Завершен: " + result.FinishedAt.Format("02.01.2006 15:04") + "\n"
	}
	pdf.MultiCell(0, 8, tr(info), "", "L", false)
	pdf.Ln(4)

	if len(result.PerformanceAnalysis.BySection) > 0 {
		pdf.SetFont(family, "B", 12)
		pdf.MultiCell(0, 8, tr("По разделам:"), "", "L", false)
		pdf.SetFont(family, "", 12)
		for _, name := range sortedKeys(result.PerformanceAnalysis.BySection) {
			b := result.PerformanceAnalysis.BySection[name]
			line := fmt.Sprintf("%s: %d/%d (%.1f%%)", name, b.Correct, b.Total, b.Percentage)
			pdf.MultiCell(0, 8, tr(line), "", "L", false)
		}
		pdf.Ln(4)
	}

	for i, a := range result.Answers {
		pdf.SetFont(family, "B", 12)
		mark := "неверно"
		switch {
		case a.SelectedOption == nil:
			mark = "без ответа"
		case a.IsCorrect:
			mark = "верно"
		}
		pdf.MultiCell(0, 8, tr(fmt.Sprintf("Вопрос %d (%s):", i+1, mark)), "", "L", false)

		pdf.SetFont(family, "", 12)
		pdf.MultiCell(0, 8, tr(a.Question.QuestionText), "", "L", false)
		pdf.Ln(2)

		selected := "-"
		if a.SelectedOption != nil {
			selected = string(*a.SelectedOption)
		}
		answerLine := fmt.Sprintf("Ваш ответ: %s\nПравильный: %s\n", selected, a.Question.CorrectOption)
		pdf.MultiCell(0, 8, tr(answerLine), "", "L", false)
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) setupFonts(pdf *gofpdf.Fpdf) (string, func(string) string) {
	if g.fontDir != "" && exists(filepath.Join(g.fontDir, regularFont)) && exists(filepath.Join(g.fontDir, boldFont)) {
		pdf.AddUTF8Font("DejaVu", "", filepath.Join(g.fontDir, regularFont))
		pdf.AddUTF8Font("DejaVu", "B", filepath.Join(g.fontDir, boldFont))
		return "DejaVu", func(s string) string { return s }
	}
	return "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func sortedKeys(m map[string]model.Breakdown) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
