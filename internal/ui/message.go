package ui

import (
	"github.com/desertthunder/rdx/internal/models"
)

type searchDoneMsg struct {
	query  string
	result *models.SearchResult
	err    error
}

type tracksFetchedMsg struct {
	parent string
	tracks []models.Object
	err    error
}

type collectedMsg struct {
	key string
	ok  bool
	err error
}
