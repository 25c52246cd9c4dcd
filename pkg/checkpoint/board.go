package checkpoint

import (
	"context"
	"fmt"
	"strings"

	"bookclub/pkg/sheets"
	"bookclub/pkg/table"
)

// Board is the current checkpoint together with every active member's
// completion state for it.
type Board struct {
	CheckpointID     string         `json:"checkpointId"`
	CheckpointNumber string         `json:"checkpointNumber"`
	StartingChapter  string         `json:"startingChapter"`
	EndingChapter    string         `json:"endingChapter"`
	DueDate          string         `json:"dueDate"`
	BookTitle        string         `json:"bookTitle"`
	AuthorName       string         `json:"authorName"`
	SuggestedBy      string         `json:"suggestedBy"`
	Next             *NextBook      `json:"next,omitempty"`
	Members          []MemberStatus `json:"members"`
}

// NextBook is the Dashboard row marked "next".
type NextBook struct {
	MemberName string `json:"memberName"`
	BookTitle  string `json:"bookTitle"`
}

type MemberStatus struct {
	MemberID         string `json:"memberId"`
	Name             string `json:"name"`
	CompletionStatus string `json:"completionStatus"`
	UpdatedDate      string `json:"updatedDate"`
}

// LoadBoard reads the Dashboard, Members and CheckpointStatus tabs and
// builds the board for the current checkpoint.
func LoadBoard(ctx context.Context, store sheets.Store) (*Board, error) {
	tabs := map[string][]table.Record{}
	for _, tab := range []string{DashboardTab, MembersTab, StatusTab} {
		rows, err := store.Get(ctx, tab)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrStoreRead, tab, err)
		}
		tabs[tab] = table.Project(rows)
	}
	return BuildBoard(tabs[DashboardTab], tabs[MembersTab], tabs[StatusTab])
}

func findOrderStatus(dashboard []table.Record, status string) (table.Record, bool) {
	for _, r := range dashboard {
		if strings.EqualFold(r.Get("OrderStatus"), status) {
			return r, true
		}
	}
	return table.Record{}, false
}

// BuildBoard joins already projected tabs. The Dashboard row whose
// OrderStatus is "current" picks the checkpoint, falling back to the first
// row. Only members whose Status is "active" are listed.
func BuildBoard(dashboard, members, statuses []table.Record) (*Board, error) {
	current, ok := findOrderStatus(dashboard, "current")
	if !ok && len(dashboard) > 0 {
		current = dashboard[0]
	}
	checkpointID := current.Get(ColumnCheckpointID)
	if checkpointID == "" {
		return nil, fmt.Errorf("%w: no current checkpoint found on %s", ErrNoCurrentCheckpoint, DashboardTab)
	}

	board := &Board{
		CheckpointID:     checkpointID,
		CheckpointNumber: current.Get("CheckPointNumber"),
		StartingChapter:  current.Get("StartingChapter"),
		EndingChapter:    current.Get("EndingChapter"),
		DueDate:          current.Get("DueDate"),
		BookTitle:        current.Get("BookTitle"),
		AuthorName:       current.Get("AuthorName"),
		SuggestedBy:      current.Get("CompleteName"),
		Members:          []MemberStatus{},
	}
	if next, ok := findOrderStatus(dashboard, "next"); ok {
		board.Next = &NextBook{
			MemberName: next.Get("CompleteName"),
			BookTitle:  next.Get("BookTitle"),
		}
	}

	byMember := map[string]table.Record{}
	for _, s := range statuses {
		if s.Get(ColumnCheckpointID) != checkpointID {
			continue
		}
		if _, seen := byMember[s.Get(ColumnMemberID)]; !seen {
			byMember[s.Get(ColumnMemberID)] = s
		}
	}

	for _, m := range members {
		if !strings.EqualFold(m.Get("Status"), "active") {
			continue
		}
		id := m.Get(ColumnMemberID)
		ms := MemberStatus{
			MemberID:         id,
			Name:             displayName(m),
			CompletionStatus: StatusNo,
		}
		if s, ok := byMember[id]; ok && NormalizeStatus(s.Get(ColumnCompletionStatus)) == StatusYes {
			ms.CompletionStatus = StatusYes
			ms.UpdatedDate = s.Get(ColumnUpdatedDate)
		}
		board.Members = append(board.Members, ms)
	}
	return board, nil
}

func displayName(m table.Record) string {
	if name := m.Get("CompleteName"); name != "" {
		return name
	}
	if name := strings.TrimSpace(m.Get("FirstName") + " " + m.Get("LastName")); name != "" {
		return name
	}
	return m.Get(ColumnMemberID)
}
