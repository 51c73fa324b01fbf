package service

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"labboard/internal/model"
)

const memberStatusActive = "active"

// RosterOrder controls how the member roster is sorted. Names listed in Names
// come first in that order regardless of position; everyone else is ordered
// by the rank of their position in Positions, then by name. Unknown positions
// sort last.
type RosterOrder struct {
	Positions []string
	Names     []string
	// Language is the BCP 47 tag used to collate names, e.g. "ko".
	Language string
}

func rank(keys []string) map[string]int {
	m := make(map[string]int, len(keys))
	for i, k := range keys {
		if _, ok := m[k]; !ok {
			m[k] = i
		}
	}
	return m
}

// SortRoster orders members in place according to order.
func SortRoster(members []model.Member, order RosterOrder) {
	tag, err := language.Parse(order.Language)
	if err != nil {
		tag = language.Und
	}
	col := collate.New(tag)
	names := rank(order.Names)
	positions := rank(order.Positions)

	positionRank := func(p string) int {
		if r, ok := positions[p]; ok {
			return r
		}
		return len(order.Positions)
	}

	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		na, aNamed := names[a.Name]
		nb, bNamed := names[b.Name]
		switch {
		case aNamed && bNamed:
			return na < nb
		case aNamed != bNamed:
			return aNamed
		}
		if pa, pb := positionRank(a.Position), positionRank(b.Position); pa != pb {
			return pa < pb
		}
		return col.CompareString(a.Name, b.Name) < 0
	})
}

type MemberService struct {
	members MemberStore
	order   RosterOrder
	logger  *zap.Logger
}

func NewMemberService(members MemberStore, order RosterOrder, logger *zap.Logger) *MemberService {
	return &MemberService{members: members, order: order, logger: logger}
}

// Roster lists active members in roster order.
func (s *MemberService) Roster(ctx context.Context) ([]model.Member, error) {
	members, err := s.members.ListByStatus(ctx, memberStatusActive)
	if err != nil {
		s.logger.Error("Failed to list members", zap.Error(err))
		return nil, err
	}
	SortRoster(members, s.order)
	return members, nil
}
