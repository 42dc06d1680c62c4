package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CSVWriter 采集结果的CSV落盘
// WriteRow 由各采集协程并发调用，互斥保护；表头只写一次
type CSVWriter struct {
	mu         sync.Mutex
	file       *os.File
	writer     *csv.Writer
	headerDone bool
}

// NewCSVWriter 创建报表文件，目录不存在时自动创建
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return &CSVWriter{file: f, writer: csv.NewWriter(f)}, nil
}

// WriteHeader 写入表头，重复调用不生效
func (w *CSVWriter) WriteHeader(columns []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.headerDone {
		return nil
	}
	if err := w.writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	w.writer.Flush()
	w.headerDone = true
	return w.writer.Error()
}

// WriteRow 写入一行并立即刷盘，采集中断时已完成的主机不丢失
func (w *CSVWriter) WriteRow(row []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write csv row: %w", err)
	}
	w.writer.Flush()
	return w.writer.Error()
}

// Close 关闭报表文件
func (w *CSVWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// CSVReader 读取已生成的报表，用于Excel转换
type CSVReader struct {
	file   *os.File
	reader *csv.Reader
}

// NewCSVReader 打开报表文件
func NewCSVReader(path string) (*CSVReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file: %w", err)
	}
	r := csv.NewReader(f)
	// 行内换行的单元格长度不定
	r.FieldsPerRecord = -1
	return &CSVReader{file: f, reader: r}, nil
}

// ReadRow 读取一行，文件结束返回 io.EOF
func (r *CSVReader) ReadRow() ([]string, error) {
	return r.reader.Read()
}

// Close 关闭文件
func (r *CSVReader) Close() error {
	return r.file.Close()
}
