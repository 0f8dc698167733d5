package comparison

import "errors"

// ErrDuplicateCompetitor indicates a competitor name that collides
// case-insensitively with one already on the roster.
var ErrDuplicateCompetitor = errors.New("competitor name already exists")

// ErrCompetitorLimit indicates the roster already holds the maximum number
// of competitors for a run.
var ErrCompetitorLimit = errors.New("competitor limit reached")

// ErrCompetitorNotFound indicates a roster lookup by unknown id.
var ErrCompetitorNotFound = errors.New("competitor not found")

// ErrInvalidCompetitorName indicates an empty or over-long display name.
var ErrInvalidCompetitorName = errors.New("invalid competitor name")

// ErrAnalysisRunning indicates a run was requested while another is still
// in flight; the working set admits one run at a time.
var ErrAnalysisRunning = errors.New("analysis already running")
