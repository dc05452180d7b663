package http

import (
	"net/url"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"diabetesdx/dataset"
	"diabetesdx/ml"
)

const (
	pageTitle      = "Web Deployment of Medical Diagnostic App"
	pageSubheading = "Is the person diabetic ?"

	// snapshotPrefix 标记触发预测时的输入快照字段
	snapshotPrefix = "last_"
)

// State 页面渲染所依赖的全部状态
// Label为nil表示尚未触发诊断；Triggered是产生Label的那组输入
type State struct {
	ShowData  bool
	ShowDist  bool
	Inputs    ml.Inputs
	Label     *ml.DiagnosisLabel
	Triggered ml.Inputs
	Error     string
}

// Page 模板使用的渲染结果
type Page struct {
	Title      string
	Subheading string
	ShowData   bool
	ShowDist   bool
	Controls   []Control
	Shown      bool
	Label      string
	Snapshot   []Hidden
	Error      string
	Table      *TableView
	Histograms []HistogramView
}

// Control 单个数值输入框
type Control struct {
	Name  string
	Kind  string
	Min   string
	Max   string
	Step  string
	Value string
}

// Hidden 隐藏表单字段
type Hidden struct {
	Name  string
	Value string
}

// TableView 原始数据表及其统计摘要
type TableView struct {
	Columns []string
	Rows    [][]string
	Summary []SummaryRow
}

// SummaryRow 单列统计摘要
type SummaryRow struct {
	Name   string
	Count  string
	Mean   string
	Std    string
	Min    string
	P25    string
	Median string
	P75    string
	Max    string
}

// HistogramView 单列直方图
type HistogramView struct {
	Column string
	URL    string
}

// View 基于不可变的schema与数据集渲染页面
type View struct {
	schema  *ml.FeatureSchema
	table   *dataset.Table
	summary []dataset.ColumnSummary
	printer *message.Printer
}

// NewView 创建视图，数据集摘要只计算一次
func NewView(schema *ml.FeatureSchema, table *dataset.Table) (*View, error) {
	summary, err := table.Summary()
	if err != nil {
		return nil, err
	}
	return &View{
		schema:  schema,
		table:   table,
		summary: summary,
		printer: message.NewPrinter(language.English),
	}, nil
}

// Render 纯函数：相同的state总是得到相同的页面，不读取磁盘
func (v *View) Render(state State) Page {
	page := Page{
		Title:      pageTitle,
		Subheading: pageSubheading,
		ShowData:   state.ShowData,
		ShowDist:   state.ShowDist,
		Error:      state.Error,
	}

	inputs := v.schema.Clamp(state.Inputs)
	for _, f := range v.schema.Fields() {
		step := "any"
		if f.Kind == ml.Integer {
			step = formatInput(f.Step())
		}
		page.Controls = append(page.Controls, Control{
			Name:  f.Name,
			Kind:  f.Kind.String(),
			Min:   formatInput(f.Min),
			Max:   formatInput(f.Max),
			Step:  step,
			Value: formatInput(inputs[f.Name]),
		})
	}

	if state.Label != nil {
		page.Shown = true
		page.Label = string(*state.Label)
		triggered := v.schema.Clamp(state.Triggered)
		for _, name := range v.schema.Names() {
			page.Snapshot = append(page.Snapshot, Hidden{
				Name:  snapshotPrefix + name,
				Value: formatInput(triggered[name]),
			})
		}
	}
	if state.ShowData {
		page.Table = v.tableView()
	}
	if state.ShowDist {
		for _, column := range v.table.Columns() {
			page.Histograms = append(page.Histograms, HistogramView{
				Column: column,
				URL:    "/histogram/" + url.PathEscape(column) + ".png",
			})
		}
	}
	return page
}

func (v *View) tableView() *TableView {
	tv := &TableView{
		Columns: v.table.Columns(),
		Rows:    make([][]string, v.table.Len()),
	}
	for i := range tv.Rows {
		row := v.table.Row(i)
		cells := make([]string, len(row))
		for j, value := range row {
			cells[j] = v.formatNumber(value)
		}
		tv.Rows[i] = cells
	}
	for _, s := range v.summary {
		tv.Summary = append(tv.Summary, SummaryRow{
			Name:   s.Name,
			Count:  v.printer.Sprint(number.Decimal(s.Count)),
			Mean:   v.formatNumber(s.Mean),
			Std:    v.formatNumber(s.Std),
			Min:    v.formatNumber(s.Min),
			P25:    v.formatNumber(s.P25),
			Median: v.formatNumber(s.Median),
			P75:    v.formatNumber(s.P75),
			Max:    v.formatNumber(s.Max),
		})
	}
	return tv
}

func (v *View) formatNumber(x float64) string {
	return v.printer.Sprint(number.Decimal(x, number.MaxFractionDigits(3)))
}

// formatInput 表单字段使用机器可读格式（无千分位）
func formatInput(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
