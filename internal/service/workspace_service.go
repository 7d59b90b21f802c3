package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"createform/internal/model"
	"createform/internal/repository"
)

// WorkspaceService manages the workspaces surveys are grouped into
type WorkspaceService struct {
	workspaceRepo repository.WorkspaceRepo
	surveyRepo    repository.SurveyRepo
	log           *zap.Logger
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(workspaceRepo repository.WorkspaceRepo, surveyRepo repository.SurveyRepo, log *zap.Logger) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		surveyRepo:    surveyRepo,
		log:           log,
	}
}

// Create creates a workspace for the owner
func (s *WorkspaceService) Create(ctx context.Context, ownerID string, req model.WorkspaceRequest) (*model.Workspace, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	ws := &model.Workspace{OwnerID: ownerID, Name: req.Name}
	if err := s.workspaceRepo.Create(ctx, ws); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return ws, nil
}

// List returns the owner's workspaces
func (s *WorkspaceService) List(ctx context.Context, ownerID string) ([]*model.Workspace, error) {
	workspaces, err := s.workspaceRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return workspaces, nil
}

// Rename changes the workspace name
func (s *WorkspaceService) Rename(ctx context.Context, ownerID, workspaceID string, req model.WorkspaceRequest) (*model.Workspace, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	ws, err := s.owned(ctx, ownerID, workspaceID)
	if err != nil {
		return nil, err
	}

	ws.Name = req.Name
	if err := s.workspaceRepo.Update(ctx, ws); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}
	return ws, nil
}

// Delete removes the workspace. Its surveys are kept and detached.
func (s *WorkspaceService) Delete(ctx context.Context, ownerID, workspaceID string) error {
	if _, err := s.owned(ctx, ownerID, workspaceID); err != nil {
		return err
	}

	if err := s.surveyRepo.DetachWorkspace(ctx, workspaceID); err != nil {
		return fmt.Errorf("failed to detach surveys: %w", err)
	}
	if err := s.workspaceRepo.Delete(ctx, workspaceID); err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}

	s.log.Info("workspace deleted", zap.String("workspace_id", workspaceID), zap.String("owner_id", ownerID))
	return nil
}

// Check verifies the workspace exists and belongs to the owner
func (s *WorkspaceService) Check(ctx context.Context, ownerID, workspaceID string) error {
	_, err := s.owned(ctx, ownerID, workspaceID)
	return err
}

func (s *WorkspaceService) owned(ctx context.Context, ownerID, workspaceID string) (*model.Workspace, error) {
	ws, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	if ws == nil {
		return nil, ErrWorkspaceNotFound
	}
	if ws.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return ws, nil
}
