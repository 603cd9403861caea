package cli

import (
	"context"
	"fmt"

	"github.com/llwyd-bot123/opencircle-client/internal/client/forms"
	"github.com/llwyd-bot123/opencircle-client/internal/client/services"
)

// Posts lists one member's posts with their comment previews.
func (a *App) Posts(ctx context.Context, uid string) error {
	fmt.Fprintln(a.out, "Loading posts...")
	q := a.svc.Posts.MemberPosts(uid)
	if err := q.FetchNext(ctx); err != nil {
		return err
	}
	posts := q.Items()
	if len(posts) == 0 {
		fmt.Fprintln(a.out, "No posts found")
		return nil
	}
	for _, p := range posts {
		author := ""
		if p.Author != nil {
			author = p.Author.DisplayName() + ": "
		}
		fmt.Fprintf(a.out, "#%d %s%s (%d comments)\n", p.ID, author, p.Description, p.TotalComments)
		for _, c := range p.LatestComments {
			fmt.Fprintf(a.out, "    %s: %s\n", c.Author.DisplayName, c.Message)
		}
	}
	if q.HasNext() {
		fmt.Fprintln(a.out, "More posts remain.")
	}
	return nil
}

// Comment writes a comment on a post or event.
func (a *App) Comment(ctx context.Context, target, id string) error {
	contentID, err := parseID(id)
	if err != nil {
		return err
	}
	message, err := GetSimpleText(a.reader, "Comment", a.out)
	if err != nil {
		return err
	}

	form := forms.Comment{Message: message}
	switch services.CommentTarget(target) {
	case services.TargetPost:
		form.PostID = contentID
	case services.TargetEvent:
		form.EventID = contentID
	default:
		return fmt.Errorf("unknown comment target %q", target)
	}
	if err := a.svc.Comments.Create(ctx, form); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Comment posted.")
	return nil
}

// Comments lists a full comment thread page by page.
func (a *App) Comments(ctx context.Context, target, id string) error {
	contentID, err := parseID(id)
	if err != nil {
		return err
	}
	t := services.CommentTarget(target)
	if t != services.TargetPost && t != services.TargetEvent {
		return fmt.Errorf("unknown comment target %q", target)
	}

	thread := a.svc.Comments.Thread(t, func() int64 { return contentID })
	fmt.Fprintln(a.out, "Loading comments...")
	for thread.HasNext() {
		if err := thread.FetchNext(ctx); err != nil {
			return err
		}
	}

	comments := thread.Items()
	if len(comments) == 0 {
		fmt.Fprintln(a.out, "No comments yet")
		return nil
	}
	for _, c := range comments {
		fmt.Fprintf(a.out, "%s: %s\n", c.Author.DisplayName, c.Message)
	}
	return nil
}
