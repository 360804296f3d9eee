package models

import "fmt"

// MatchRecord is one import of an API route module found in a source file.
type MatchRecord struct {
	File   string
	Import string
}

type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("Error reading %s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// ResultSet holds every match of a single scan in the order files were
// visited and matches were found within each file.
type ResultSet struct {
	Records      []MatchRecord
	Errors       []FileError
	FilesScanned int
	BytesRead    int64
}

func NewResultSet() *ResultSet {
	return &ResultSet{Records: []MatchRecord{}}
}

func (rs *ResultSet) Add(records ...MatchRecord) {
	rs.Records = append(rs.Records, records...)
}

func (rs *ResultSet) AddError(path string, err error) {
	rs.Errors = append(rs.Errors, FileError{Path: path, Err: err})
}

func (rs *ResultSet) Len() int {
	return len(rs.Records)
}

func (rs *ResultSet) Empty() bool {
	return len(rs.Records) == 0
}

// Files returns the distinct files with at least one match, first-seen order.
func (rs *ResultSet) Files() []string {
	seen := make(map[string]bool)
	var files []string
	for _, r := range rs.Records {
		if !seen[r.File] {
			seen[r.File] = true
			files = append(files, r.File)
		}
	}
	return files
}
