package storage

import (
	"bytes"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"personals/internal"
)

// PersonalsStore reads and writes the published personals JSON array.
type PersonalsStore struct {
	path string
}

func NewPersonalsStore(path string) *PersonalsStore {
	return &PersonalsStore{path: path}
}

func (s *PersonalsStore) Path() string {
	return s.path
}

// Load returns the persisted records. A missing file is an empty list.
func (s *PersonalsStore) Load() ([]internal.PersonalRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []internal.PersonalRecord{}, nil
		}
		return nil, internal.WrapError(internal.CodeLoad, err, "read %s", s.path)
	}

	var records []internal.PersonalRecord
	if len(bytes.TrimSpace(data)) == 0 {
		return []internal.PersonalRecord{}, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, internal.WrapError(internal.CodeLoad, err, "parse %s", s.path)
	}
	if records == nil {
		records = []internal.PersonalRecord{}
	}
	for i := range records {
		if records[i].Categories == nil {
			records[i].Categories = []string{}
		}
		if records[i].Locations == nil {
			records[i].Locations = []string{}
		}
	}
	return records, nil
}

// Save replaces the file through a temp file and rename.
func (s *PersonalsStore) Save(records []internal.PersonalRecord) error {
	if records == nil {
		records = []internal.PersonalRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return internal.WrapError(internal.CodeSave, err, "encode personals")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return internal.WrapError(internal.CodeSave, err, "create %s", filepath.Dir(s.path))
	}

	tmpFile := s.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return internal.WrapError(internal.CodeSave, err, "create %s", tmpFile)
	}

	if _, err = file.Write(buf.Bytes()); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return internal.WrapError(internal.CodeSave, err, "write %s", tmpFile)
	}
	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return internal.WrapError(internal.CodeSave, err, "sync %s", tmpFile)
	}
	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return internal.WrapError(internal.CodeSave, err, "close %s", tmpFile)
	}

	if err := os.Rename(tmpFile, s.path); err != nil {
		os.Remove(tmpFile)
		return internal.WrapError(internal.CodeSave, err, "rename %s", tmpFile)
	}
	return nil
}
