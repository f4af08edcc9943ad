package models

import (
	"path/filepath"
	"strings"
)

// FileType is the declared or inferred kind of the uploaded statement.
type FileType string

const (
	FileCSV  FileType = "csv"
	FilePDF  FileType = "pdf"
	FileXLSX FileType = "xlsx"
	FileDOCX FileType = "docx"
	FileText FileType = "text"
)

// InferFileType maps a filename extension to a FileType. Anything unknown
// takes the generic text path.
func InferFileType(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".tsv":
		return FileCSV
	case ".pdf":
		return FilePDF
	case ".xlsx", ".xls":
		return FileXLSX
	case ".docx", ".doc":
		return FileDOCX
	default:
		return FileText
	}
}

// ParseFileType accepts a user-supplied tag, falling back to FileText.
func ParseFileType(tag string) FileType {
	switch ft := FileType(strings.ToLower(strings.TrimSpace(tag))); ft {
	case FileCSV, FilePDF, FileXLSX, FileDOCX:
		return ft
	default:
		return FileText
	}
}
