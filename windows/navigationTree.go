// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package windows

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/magpierre/dishledger/internal/store"
)

// TreeNodeType represents the type of node in the navigation tree
type TreeNodeType string

const (
	NodeTypeGroup TreeNodeType = "group"
	NodeTypeTable TreeNodeType = "table"
	NodeTypeView  TreeNodeType = "view"
)

// TreeNode represents a node in the navigation tree
type TreeNode struct {
	ID       string       // Unique identifier
	NodeType TreeNodeType // Type of node
	Name     string       // Display name
	Children []string     // Child node IDs
}

// NavigationTree lists the tables and views of the database, grouped by
// kind.
type NavigationTree struct {
	nodes   map[string]*TreeNode
	rootIDs []string
	mu      sync.RWMutex
}

// NewNavigationTree creates an empty navigation tree
func NewNavigationTree() *NavigationTree {
	return &NavigationTree{
		nodes:   make(map[string]*TreeNode),
		rootIDs: make([]string, 0),
	}
}

// GenerateNodeID creates a unique ID for a tree node
func (nt *NavigationTree) GenerateNodeID(nodeType TreeNodeType, name string) string {
	return fmt.Sprintf("%s:%s", nodeType, name)
}

// ParseNodeID extracts the node type and name from a node ID
func (nt *NavigationTree) ParseNodeID(nodeID string) (nodeType TreeNodeType, name string) {
	kind, name, ok := strings.Cut(nodeID, ":")
	if !ok {
		return "", ""
	}
	return TreeNodeType(kind), name
}

// Load replaces the tree with the objects of s.
func (nt *NavigationTree) Load(ctx context.Context, s *store.Store) error {
	objects, err := s.Objects(ctx)
	if err != nil {
		return err
	}
	nt.SetObjects(objects)
	return nil
}

// SetObjects replaces the tree with objects. Empty groups are left out.
func (nt *NavigationTree) SetObjects(objects []store.Object) {
	nt.mu.Lock()
	defer nt.mu.Unlock()

	nt.nodes = make(map[string]*TreeNode)
	nt.rootIDs = make([]string, 0, 2)

	groups := map[string]*TreeNode{}
	for _, obj := range objects {
		nodeType := NodeTypeTable
		groupName := "Tables"
		if obj.Kind == "view" {
			nodeType = NodeTypeView
			groupName = "Views"
		}

		group, exists := groups[groupName]
		if !exists {
			group = &TreeNode{
				ID:       nt.GenerateNodeID(NodeTypeGroup, groupName),
				NodeType: NodeTypeGroup,
				Name:     groupName,
				Children: make([]string, 0),
			}
			groups[groupName] = group
			nt.nodes[group.ID] = group
			nt.rootIDs = append(nt.rootIDs, group.ID)
		}

		node := &TreeNode{
			ID:       nt.GenerateNodeID(nodeType, obj.Name),
			NodeType: nodeType,
			Name:     obj.Name,
		}
		nt.nodes[node.ID] = node
		group.Children = append(group.Children, node.ID)
	}
}

// GetChildren returns the child node IDs for a given parent node
// Returns root nodes if nodeID is empty
func (nt *NavigationTree) GetChildren(nodeID widget.TreeNodeID) []widget.TreeNodeID {
	nt.mu.RLock()
	defer nt.mu.RUnlock()

	if nodeID == "" {
		return nt.rootIDs
	}
	node, exists := nt.nodes[nodeID]
	if !exists {
		return []widget.TreeNodeID{}
	}
	return node.Children
}

// IsBranch returns true if the node can have children
func (nt *NavigationTree) IsBranch(nodeID widget.TreeNodeID) bool {
	nt.mu.RLock()
	defer nt.mu.RUnlock()

	if nodeID == "" {
		return true
	}
	node, exists := nt.nodes[nodeID]
	return exists && node.NodeType == NodeTypeGroup
}

// GetNode retrieves a node by ID
func (nt *NavigationTree) GetNode(nodeID widget.TreeNodeID) *TreeNode {
	nt.mu.RLock()
	defer nt.mu.RUnlock()

	return nt.nodes[nodeID]
}

// UpdateNodeDisplay updates the visual representation of a tree node
func (nt *NavigationTree) UpdateNodeDisplay(nodeID widget.TreeNodeID, obj fyne.CanvasObject, branch bool) {
	node := nt.GetNode(nodeID)
	if node == nil {
		return
	}

	box, ok := obj.(*fyne.Container)
	if !ok || len(box.Objects) < 2 {
		return
	}

	if icon, ok := box.Objects[0].(*widget.Icon); ok {
		switch node.NodeType {
		case NodeTypeGroup:
			icon.SetResource(theme.FolderIcon())
		case NodeTypeTable:
			icon.SetResource(theme.GridIcon())
		case NodeTypeView:
			icon.SetResource(theme.VisibilityIcon())
		}
	}
	if label, ok := box.Objects[1].(*widget.Label); ok {
		label.SetText(node.Name)
	}
}

// Widget builds the tree widget. onOpen receives the name of a selected
// table or view.
func (nt *NavigationTree) Widget(onOpen func(name string)) *widget.Tree {
	tree := widget.NewTree(
		nt.GetChildren,
		nt.IsBranch,
		func(branch bool) fyne.CanvasObject {
			return container.NewHBox(widget.NewIcon(theme.DocumentIcon()), widget.NewLabel("template"))
		},
		func(id widget.TreeNodeID, branch bool, obj fyne.CanvasObject) {
			nt.UpdateNodeDisplay(id, obj, branch)
		},
	)
	tree.OnSelected = func(uid widget.TreeNodeID) {
		node := nt.GetNode(uid)
		if node == nil || node.NodeType == NodeTypeGroup {
			return
		}
		onOpen(node.Name)
		tree.Unselect(uid)
	}
	for _, id := range nt.GetChildren("") {
		tree.OpenBranch(id)
	}
	return tree
}
