package graph

import (
	"strings"

	"github.com/matzehuels/monorail/pkg/errors"
)

// Duplicate is one package name claimed by several manifests.
type Duplicate struct {
	Name      string
	Locations []string // Sorted
}

// DuplicateNameError is returned by [Build] when package names are not
// unique. Every duplicated name is listed, sorted by name.
type DuplicateNameError struct {
	Duplicates []Duplicate
}

func (e *DuplicateNameError) Error() string {
	var b strings.Builder
	for i, d := range e.Duplicates {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(`Package name "` + d.Name + `" used in multiple packages:`)
		for _, loc := range d.Locations {
			b.WriteString("\n\t" + loc)
		}
	}
	return b.String()
}

// Code implements [errors.Coder].
func (e *DuplicateNameError) Code() errors.Code { return errors.ErrCodeDuplicatePackage }

// Names returns the duplicated names.
func (e *DuplicateNameError) Names() []string {
	names := make([]string, len(e.Duplicates))
	for i, d := range e.Duplicates {
		names[i] = d.Name
	}
	return names
}
