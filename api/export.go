package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"moonlife/models"
	"moonlife/storage"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	store *storage.RecordStore
}

// NewExportHandler 创建导出处理器
func NewExportHandler(store *storage.RecordStore) *ExportHandler {
	return &ExportHandler{store: store}
}

// exportRange 解析导出时间范围并返回范围内的记录（按记账日期算）
func (h *ExportHandler) exportRange(c *gin.Context) ([]models.ExpenseRecord, string, string, bool) {
	startStr := c.Query("start_date")
	endStr := c.Query("end_date")

	if startStr == "" || endStr == "" {
		BadRequest(c, "请提供开始日期和结束日期")
		return nil, "", "", false
	}
	if _, err := time.ParseInLocation(models.DateLayout, startStr, time.Local); err != nil {
		BadRequest(c, "开始日期格式错误，应为: 2006-01-02")
		return nil, "", "", false
	}
	if _, err := time.ParseInLocation(models.DateLayout, endStr, time.Local); err != nil {
		BadRequest(c, "结束日期格式错误，应为: 2006-01-02")
		return nil, "", "", false
	}

	var out []models.ExpenseRecord
	for _, e := range h.store.Expenses() {
		// ISO 日期字符串直接按字典序比较
		if e.Date >= startStr && e.Date <= endStr {
			out = append(out, e)
		}
	}
	return out, startStr, endStr, true
}

// ExportCSV 导出消费记录为 CSV
// @Summary 导出消费记录为 CSV
// @Description 按日期范围导出消费记录，含心情标签
// @Tags 导出
// @Produce text/csv
// @Param start_date query string true "开始日期 (2024-01-01)"
// @Param end_date query string true "结束日期 (2024-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	expenses, startStr, endStr, ok := h.exportRange(c)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)

	headers := []string{"ID", "金额", "类别", "日期", "备注", "心情", "心情备注", "创建时间"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	for _, e := range expenses {
		row := []string{
			fmt.Sprintf("%d", e.ID),
			fmt.Sprintf("%.2f", e.Amount),
			e.Category,
			e.Date,
			e.Note,
			models.MoodName(e.Mood),
			e.MoodNote,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if e.Mood == "" {
			row[5] = ""
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("expenses_%s_%s.csv", startStr, endStr)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出消费记录为 Excel
// @Summary 导出消费记录为 Excel
// @Description 按日期范围导出消费记录为 xlsx，末尾附合计行
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param start_date query string true "开始日期 (2024-01-01)"
// @Param end_date query string true "结束日期 (2024-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	expenses, startStr, endStr, ok := h.exportRange(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "消费记录"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 12)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 14)
	f.SetColWidth(sheetName, "E", "E", 30)
	f.SetColWidth(sheetName, "F", "F", 10)
	f.SetColWidth(sheetName, "G", "G", 24)
	f.SetColWidth(sheetName, "H", "H", 20)

	headers := []string{"ID", "金额", "类别", "日期", "备注", "心情", "心情备注", "创建时间"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	var totalAmount float64
	for i, e := range expenses {
		row := i + 2
		mood := ""
		if e.Mood != "" {
			mood = models.MoodEmoji(e.Mood) + models.MoodName(e.Mood)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), e.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), e.Amount)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), e.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), e.Date)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), e.Note)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), mood)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), e.MoodNote)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), e.CreatedAt.Format("2006-01-02 15:04:05"))
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("H%d", row), dataStyle)
		totalAmount += e.Amount
	}

	// 汇总行
	summaryRow := len(expenses) + 2
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "合计")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryRow), totalAmount)
	f.SetCellValue(sheetName, fmt.Sprintf("C%d", summaryRow), fmt.Sprintf("共 %d 条记录", len(expenses)))
	f.MergeCell(sheetName, fmt.Sprintf("C%d", summaryRow), fmt.Sprintf("H%d", summaryRow))

	filename := fmt.Sprintf("expenses_%s_%s.xlsx", startStr, endStr)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", filename))

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}
}
