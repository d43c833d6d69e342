package httpserver

import (
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

type titleRequest struct {
	Title string `json:"title"`
}

type taskPatchRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

func parseBody[T any](c *fiber.Ctx) (*T, error) {
	var req T
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid JSON payload")
	}
	return &req, nil
}

func (s *HTTPServer) getLists(c *fiber.Ctx) error {
	lists, err := s.deps.Lists.Lists(c.UserContext(), localUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(lists)
}

func (s *HTTPServer) createList(c *fiber.Ctx) error {
	req, err := parseBody[titleRequest](c)
	if err != nil {
		return err
	}

	list, err := s.deps.Lists.CreateList(c.UserContext(), localUserID(c), req.Title)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(list)
}

func (s *HTTPServer) renameList(c *fiber.Ctx) error {
	req, err := parseBody[titleRequest](c)
	if err != nil {
		return err
	}

	list, err := s.deps.Lists.RenameList(c.UserContext(), localUserID(c), c.Params("id"), req.Title)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (s *HTTPServer) deleteList(c *fiber.Ctx) error {
	if err := s.deps.Lists.DeleteList(c.UserContext(), localUserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *HTTPServer) getTasks(c *fiber.Ctx) error {
	tasks, err := s.deps.Lists.Tasks(c.UserContext(), localUserID(c), c.Params("listId"))
	if err != nil {
		return err
	}
	return c.JSON(tasks)
}

func (s *HTTPServer) createTask(c *fiber.Ctx) error {
	req, err := parseBody[titleRequest](c)
	if err != nil {
		return err
	}

	task, err := s.deps.Lists.CreateTask(c.UserContext(), localUserID(c), c.Params("listId"), req.Title)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (s *HTTPServer) updateTask(c *fiber.Ctx) error {
	req, err := parseBody[taskPatchRequest](c)
	if err != nil {
		return err
	}

	patch := models.TaskPatch{Title: req.Title, Completed: req.Completed}
	task, err := s.deps.Lists.UpdateTask(c.UserContext(), localUserID(c), c.Params("listId"), c.Params("taskId"), patch)
	if err != nil {
		return err
	}
	return c.JSON(task)
}

func (s *HTTPServer) deleteTask(c *fiber.Ctx) error {
	err := s.deps.Lists.DeleteTask(c.UserContext(), localUserID(c), c.Params("listId"), c.Params("taskId"))
	if err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
