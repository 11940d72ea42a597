package tui

import (
	"github.com/Veraticus/spend/internal/model"
	"github.com/Veraticus/spend/internal/paging"
)

// Load results.
type pageLoadedMsg struct {
	err    error
	vc     model.ViewContext
	result paging.Result
}

type deleteDoneMsg struct {
	err error
	id  string
}

type delegatesLoadedMsg struct {
	err    error
	emails []string
}

// UI messages.
type toastExpiredMsg struct {
	seq int
}
