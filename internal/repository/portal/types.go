package portal

// Wire shapes of the platform search REST contract. Field names follow the
// backend's documented request schema and are not redefined here.

// Request is the POST body of a platform search query.
type Request struct {
	QueryText         string     `json:"querytext"`
	StartRow          int        `json:"startRow"`
	RowLimit          int        `json:"rowLimit"`
	SelectProperties  []string   `json:"selectProperties,omitempty"`
	Refiners          string     `json:"refiners,omitempty"`
	RefinementFilters []string   `json:"refinementFilters,omitempty"`
	SortList          []SortItem `json:"sortList,omitempty"`
	TrimDuplicates    bool       `json:"trimDuplicates"`
	EnableQueryRules  bool       `json:"enableQueryRules"`
	SourceID          string     `json:"sourceId,omitempty"`
}

// SortItem is one entry of the request sort list.
type SortItem struct {
	Property  string `json:"property"`
	Direction int    `json:"direction"` // 0 ascending, 1 descending
}

// Response is the platform search response envelope.
type Response struct {
	PrimaryResult   ResultTable     `json:"primaryQueryResult"`
	Refiners        []RefinerResult `json:"refinementResults,omitempty"`
	SpellSuggestion string          `json:"spellingSuggestion,omitempty"`
}

// ResultTable holds one hit container.
type ResultTable struct {
	Rows      []Row `json:"rows"`
	TotalRows int   `json:"totalRows"`
}

// Row is one hit: a list of key/value cells.
type Row struct {
	Cells []Cell `json:"cells"`
}

// Cell is one field of a hit.
type Cell struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// RefinerResult is one computed refiner with its entries.
type RefinerResult struct {
	Name    string         `json:"name"`
	Entries []RefinerEntry `json:"entries"`
}

// RefinerEntry is one refiner bucket. Token is the opaque refinement token
// passed back verbatim when the bucket is selected.
type RefinerEntry struct {
	Name  string `json:"refinementName"`
	Value string `json:"refinementValue"`
	Token string `json:"refinementToken"`
	Count int    `json:"refinementCount"`
}

// PropertyInfo describes a managed property, used for sort-field validation.
type PropertyInfo struct {
	Name     string `json:"name"`
	Sortable bool   `json:"sortable"`
}
