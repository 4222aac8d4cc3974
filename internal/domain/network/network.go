// Package network builds the support network graph around one user: the
// organizations they are linked to, their assigned staff member and their
// guardian.
package network

import (
	"context"
	"fmt"
	"strings"

	"github.com/soudan/casebook/internal/domain/client"
	"github.com/soudan/casebook/internal/domain/organization"
	"github.com/soudan/casebook/internal/domain/staff"
	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/dates"
)

const (
	NodeUser     = "user"
	NodeService  = "service"
	NodeMedical  = "medical"
	NodeGuardian = "guardian"
	NodeOther    = "other"
	NodeStaff    = "staff"
)

type Node struct {
	ID    string                 `json:"id"`
	Label string                 `json:"label"`
	Type  string                 `json:"type"`
	Data  map[string]interface{} `json:"data"`
}

type Edge struct {
	From         string     `json:"from"`
	To           string     `json:"to"`
	Relationship string     `json:"relationship"`
	Frequency    *string    `json:"frequency"`
	StartDate    dates.Date `json:"start_date"`
}

type Graph struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
}

type UserSource interface {
	Get(ctx context.Context, id int64, includeDeleted bool) (*client.User, error)
}

type LinkSource interface {
	LinksForUser(ctx context.Context, userID int64) ([]*organization.Link, error)
}

type StaffSource interface {
	Get(ctx context.Context, id int64) (*staff.Staff, error)
}

type Service struct {
	users  UserSource
	links  LinkSource
	staffs StaffSource
}

func NewService(users UserSource, links LinkSource, staffs StaffSource) *Service {
	return &Service{users: users, links: links, staffs: staffs}
}

// Build returns the graph for a live user.
func (s *Service) Build(ctx context.Context, userID int64) (*Graph, error) {
	u, err := s.users.Get(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	links, err := s.links.LinksForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	userNode := fmt.Sprintf("user_%d", u.ID)
	g := &Graph{
		UserID:   u.ID,
		UserName: u.Name,
		Nodes: []Node{{
			ID:    userNode,
			Label: u.Name,
			Type:  NodeUser,
			Data: map[string]interface{}{
				"age":           u.Age,
				"gender":        u.Gender,
				"support_level": u.DisabilitySupportLevel,
			},
		}},
		Edges: []Edge{},
	}

	seen := make(map[string]bool)
	for _, l := range links {
		id := fmt.Sprintf("org_%d", l.OrganizationID)
		if !seen[id] {
			seen[id] = true
			g.Nodes = append(g.Nodes, Node{
				ID:    id,
				Label: l.OrganizationName,
				Type:  orgNodeType(l.RelationshipType, l.OrganizationType),
				Data: map[string]interface{}{
					"organization_type": l.OrganizationType,
					"relationship_type": l.RelationshipType,
					"frequency":         l.Frequency,
				},
			})
		}
		rel := "関連"
		if l.RelationshipType != nil && *l.RelationshipType != "" {
			rel = *l.RelationshipType
		}
		g.Edges = append(g.Edges, Edge{From: userNode, To: id, Relationship: rel, Frequency: l.Frequency, StartDate: l.StartDate})
	}

	if u.AssignedStaffID != nil {
		st, err := s.staffs.Get(ctx, *u.AssignedStaffID)
		switch {
		case apperr.Is(err, apperr.KindNotFound):
			// assignment points at a removed account
		case err != nil:
			return nil, err
		default:
			g.addStaff(userNode, st)
		}
	}

	if u.GuardianName != nil && *u.GuardianName != "" {
		rel := "後見人"
		if u.GuardianType != nil && *u.GuardianType != "" {
			rel = *u.GuardianType
		}
		g.Nodes = append(g.Nodes, Node{
			ID:    "guardian_1",
			Label: *u.GuardianName,
			Type:  NodeGuardian,
			Data:  map[string]interface{}{"guardian_type": u.GuardianType, "contact": u.GuardianContact},
		})
		g.Edges = append(g.Edges, Edge{From: userNode, To: "guardian_1", Relationship: rel})
	}
	return g, nil
}

func (g *Graph) addStaff(userNode string, st *staff.Staff) {
	id := fmt.Sprintf("staff_%d", st.ID)
	g.Nodes = append(g.Nodes, Node{
		ID:    id,
		Label: st.Name,
		Type:  NodeStaff,
		Data:  map[string]interface{}{"role": st.Role, "email": st.Email},
	})
	g.Edges = append(g.Edges, Edge{From: userNode, To: id, Relationship: "担当"})
}

// orgNodeType classifies an organization node. The relationship wins over
// the organization category when it is specific.
func orgNodeType(relationship *string, orgType string) string {
	if relationship != nil {
		rel := *relationship
		switch {
		case containsAny(rel, "通所", "サービス", "施設"):
			return NodeService
		case containsAny(rel, "医療", "病院", "診療", "主治医"):
			return NodeMedical
		case strings.Contains(rel, "後見"):
			return NodeGuardian
		}
	}
	switch orgType {
	case organization.TypeService:
		return NodeService
	case organization.TypeMedical:
		return NodeMedical
	case organization.TypeGuardian:
		return NodeGuardian
	}
	switch {
	case containsAny(orgType, "医療", "病院", "クリニック"):
		return NodeMedical
	case containsAny(orgType, "福祉", "介護", "障害"):
		return NodeService
	}
	return NodeOther
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
