package service

import (
	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/pkg/util"
)

type treeFrame struct {
	index  int
	parent *model.CommentNode
	depth  int
}

// BuildCommentTree 한 대상의 전체 행으로 트리를 만든다
// 자식 순서는 rows 순서를 따른다. 각 행은 최대 한 번만 방문하며,
// 루트에서 도달할 수 없는 행(없는 부모, 자기 참조, 순환)은 orphans 로 따로 돌려준다
func BuildCommentTree(rows []model.Review) ([]*model.CommentNode, []model.Review) {
	children := make(map[uint][]int, len(rows))
	var rootIdx []int
	for i, r := range rows {
		if r.ParentID == nil {
			rootIdx = append(rootIdx, i)
			continue
		}
		children[*r.ParentID] = append(children[*r.ParentID], i)
	}

	visited := make(map[uint]bool, len(rows))
	roots := make([]*model.CommentNode, 0, len(rootIdx))

	stack := make([]treeFrame, 0, len(rows))
	for i := len(rootIdx) - 1; i >= 0; i-- {
		stack = append(stack, treeFrame{index: rootIdx[i]})
	}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		row := rows[frame.index]
		if visited[row.ID] {
			continue
		}
		visited[row.ID] = true

		node := newCommentNode(row, frame.depth)
		if frame.parent == nil {
			roots = append(roots, node)
		} else {
			frame.parent.Children = append(frame.parent.Children, node)
		}

		kids := children[row.ID]
		for i := len(kids) - 1; i >= 0; i-- {
			if !visited[rows[kids[i]].ID] {
				stack = append(stack, treeFrame{index: kids[i], parent: node, depth: frame.depth + 1})
			}
		}
	}

	orphans := make([]model.Review, 0)
	for _, r := range rows {
		if !visited[r.ID] {
			orphans = append(orphans, r)
		}
	}
	return roots, orphans
}

func newCommentNode(r model.Review, depth int) *model.CommentNode {
	node := &model.CommentNode{
		ID:        r.ID,
		UserID:    r.UserID,
		UserName:  r.AuthorName(),
		Rating:    r.Rating,
		Comment:   r.Comment,
		ParentID:  r.ParentID,
		CreatedAt: r.CreatedAt,
		Depth:     depth,
		IndentPx:  depth * IndentPerDepth,
		Children:  []*model.CommentNode{},
	}
	if r.Rating > 0 {
		node.Stars = util.StarRating(float64(r.Rating))
	}
	return node
}
