package cli

import (
	"context"
	"fmt"
)

func (a *App) Lists(ctx context.Context) error {
	lists, err := a.client.Lists(ctx)
	if err != nil {
		return a.report(err)
	}
	if len(lists) == 0 {
		fmt.Fprintln(a.out, "No lists yet")
		return nil
	}
	for _, l := range lists {
		fmt.Fprintf(a.out, "%s  %s\n", l.ID, l.Title)
	}
	return nil
}

func (a *App) AddList(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "List title", a.out)
	if err != nil {
		return a.report(err)
	}
	l, err := a.client.CreateList(ctx, title)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Created list %s\n", l.ID)
	return nil
}

func (a *App) Tasks(ctx context.Context) error {
	listID, err := GetSimpleText(a.reader, "List ID", a.out)
	if err != nil {
		return a.report(err)
	}
	tasks, err := a.client.Tasks(ctx, listID)
	if err != nil {
		return a.report(err)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks in this list")
		return nil
	}
	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Fprintf(a.out, "[%s] %s  %s\n", mark, t.ID, t.Title)
	}
	return nil
}

func (a *App) AddTask(ctx context.Context) error {
	listID, err := GetSimpleText(a.reader, "List ID", a.out)
	if err != nil {
		return a.report(err)
	}
	title, err := GetSimpleText(a.reader, "Task title", a.out)
	if err != nil {
		return a.report(err)
	}
	t, err := a.client.CreateTask(ctx, listID, title)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Created task %s\n", t.ID)
	return nil
}

// Done marks a task completed.
func (a *App) Done(ctx context.Context) error {
	listID, err := GetSimpleText(a.reader, "List ID", a.out)
	if err != nil {
		return a.report(err)
	}
	taskID, err := GetSimpleText(a.reader, "Task ID", a.out)
	if err != nil {
		return a.report(err)
	}
	if _, err := a.client.CompleteTask(ctx, listID, taskID, true); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Task completed")
	return nil
}
