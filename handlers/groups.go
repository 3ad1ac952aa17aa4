package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/heavensdreams/rental-api/config"
	"github.com/heavensdreams/rental-api/middleware"
	"github.com/heavensdreams/rental-api/models"
	"github.com/heavensdreams/rental-api/services"
)

type GroupHandler struct {
	Store *config.Store
	WS    *WSHandler
}

type groupWithMembers struct {
	models.Group
	MemberIDs []string `json:"member_ids"`
}

func (h *GroupHandler) List(c *gin.Context) {
	doc, err := h.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read data"})
		return
	}

	out := make([]groupWithMembers, 0, len(doc.Groups))
	for _, g := range doc.Groups {
		entry := groupWithMembers{Group: g, MemberIDs: []string{}}
		for _, ug := range doc.UserGroups {
			if ug.GroupID == g.ID {
				entry.MemberIDs = append(entry.MemberIDs, ug.UserID)
			}
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, out)
}

func (h *GroupHandler) Create(c *gin.Context) {
	var req models.GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID := middleware.GetUserID(c)
	group := models.Group{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: time.Now().UTC(),
	}

	err := h.Store.Mutate(func(doc *models.Document) error {
		for _, g := range doc.Groups {
			if strings.EqualFold(g.Name, group.Name) {
				return errNameTaken
			}
		}
		doc.Groups = append(doc.Groups, group)
		services.RecordLog(doc, actorID, "create", entityGroup, group.ID, nil, group)
		return nil
	})
	if err == errNameTaken {
		c.JSON(http.StatusConflict, gin.H{"error": "A group with this name already exists"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	h.WS.BroadcastUpdate(entityGroup, "created", group.ID, actorID)
	c.JSON(http.StatusCreated, group)
}

// Update renames a group. Apartment visibility tags reference groups by
// name, so matching tags are rewritten in the same mutation.
func (h *GroupHandler) Update(c *gin.Context) {
	groupID := c.Param("id")

	var req models.GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID := middleware.GetUserID(c)
	newName := strings.TrimSpace(req.Name)
	var updated models.Group

	err := h.Store.Mutate(func(doc *models.Document) error {
		group := doc.GroupByID(groupID)
		if group == nil {
			return errGroupNotFound
		}
		for _, g := range doc.Groups {
			if g.ID != groupID && strings.EqualFold(g.Name, newName) {
				return errNameTaken
			}
		}

		oldName := group.Name
		group.Name = newName
		updated = *group

		for i := range doc.Apartments {
			for j, tag := range doc.Apartments[i].Groups {
				if strings.EqualFold(tag, oldName) {
					doc.Apartments[i].Groups[j] = newName
				}
			}
		}

		services.RecordLog(doc, actorID, "update", entityGroup, groupID,
			models.Group{ID: groupID, Name: oldName}, updated)
		return nil
	})
	switch err {
	case nil:
	case errGroupNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	case errNameTaken:
		c.JSON(http.StatusConflict, gin.H{"error": "A group with this name already exists"})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update group"})
		return
	}

	h.WS.BroadcastUpdate(entityGroup, "updated", groupID, actorID)
	c.JSON(http.StatusOK, updated)
}

// Delete removes the group, its memberships and its tag from every
// apartment. Direct email tags are untouched.
func (h *GroupHandler) Delete(c *gin.Context) {
	groupID := c.Param("id")
	actorID := middleware.GetUserID(c)

	err := h.Store.Mutate(func(doc *models.Document) error {
		idx := -1
		for i := range doc.Groups {
			if doc.Groups[i].ID == groupID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return errGroupNotFound
		}
		removed := doc.Groups[idx]
		doc.Groups = append(doc.Groups[:idx], doc.Groups[idx+1:]...)

		memberships := doc.UserGroups[:0]
		for _, ug := range doc.UserGroups {
			if ug.GroupID != groupID {
				memberships = append(memberships, ug)
			}
		}
		doc.UserGroups = memberships

		for i := range doc.Apartments {
			tags := doc.Apartments[i].Groups[:0]
			for _, tag := range doc.Apartments[i].Groups {
				if !strings.EqualFold(tag, removed.Name) {
					tags = append(tags, tag)
				}
			}
			doc.Apartments[i].Groups = tags
		}

		services.RecordLog(doc, actorID, "delete", entityGroup, groupID, removed, nil)
		return nil
	})
	if err == errGroupNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete group"})
		return
	}

	h.WS.BroadcastUpdate(entityGroup, "deleted", groupID, actorID)
	c.JSON(http.StatusOK, gin.H{"message": "Group deleted"})
}

func (h *GroupHandler) AddMember(c *gin.Context) {
	groupID := c.Param("id")

	var req models.MembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID := middleware.GetUserID(c)
	err := h.Store.Mutate(func(doc *models.Document) error {
		if doc.GroupByID(groupID) == nil {
			return errGroupNotFound
		}
		if doc.UserByID(req.UserID) == nil {
			return errUserNotFound
		}
		for _, ug := range doc.UserGroups {
			if ug.GroupID == groupID && ug.UserID == req.UserID {
				return nil // already a member
			}
		}
		doc.UserGroups = append(doc.UserGroups, models.UserGroup{UserID: req.UserID, GroupID: groupID})
		services.RecordLog(doc, actorID, "add_member", entityGroup, groupID, nil, req)
		return nil
	})
	switch err {
	case nil:
		h.WS.BroadcastUpdate(entityGroup, "updated", groupID, actorID)
		c.JSON(http.StatusOK, gin.H{"message": "Member added"})
	case errGroupNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
	case errUserNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
	}
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	groupID := c.Param("id")
	userID := c.Param("user_id")
	actorID := middleware.GetUserID(c)

	err := h.Store.Mutate(func(doc *models.Document) error {
		if doc.GroupByID(groupID) == nil {
			return errGroupNotFound
		}
		memberships := doc.UserGroups[:0]
		for _, ug := range doc.UserGroups {
			if !(ug.GroupID == groupID && ug.UserID == userID) {
				memberships = append(memberships, ug)
			}
		}
		doc.UserGroups = memberships
		services.RecordLog(doc, actorID, "remove_member", entityGroup, groupID,
			models.UserGroup{UserID: userID, GroupID: groupID}, nil)
		return nil
	})
	if err == errGroupNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	h.WS.BroadcastUpdate(entityGroup, "updated", groupID, actorID)
	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}
