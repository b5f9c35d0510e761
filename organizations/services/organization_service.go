package services

import (
	"errors"
	"fmt"

	"org-registry-backend/db/models"
	"org-registry-backend/organizations/repositories"
	"org-registry-backend/organizations/requests"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrganizationService struct {
	repo   repositories.OrganizationRepository
	logger *zap.Logger
}

func NewOrganizationService(repo repositories.OrganizationRepository, logger *zap.Logger) *OrganizationService {
	return &OrganizationService{repo: repo, logger: logger}
}

// CreateOrganizationTx validates the request, serializes on the (name, type)
// business key, and persists the row inside the caller's transaction. The
// unique index on the business key backstops the check; a duplicate-key error
// from a racing writer is converted to the same UniqueConstraintError the
// programmatic check produces.
func (s *OrganizationService) CreateOrganizationTx(tx *gorm.DB, req requests.OrganizationRequest, createdBy string) (*models.Organization, error) {
	if err := ValidateOrganizationRequest(req); err != nil {
		return nil, err
	}

	if err := s.repo.LockBusinessKey(tx, req.Name, req.Type); err != nil {
		return nil, fmt.Errorf("failed to acquire business key lock: %w", err)
	}

	exists, err := s.repo.ExistsByBusinessKey(tx, req.Name, req.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to check business key: %w", err)
	}
	if exists {
		return nil, &UniqueConstraintError{Name: req.Name, Type: req.Type}
	}

	org := &models.Organization{
		Name:            req.Name,
		FullName:        req.FullName,
		Type:            req.Type,
		AnnualTurnover:  req.AnnualTurnover,
		EmployeesCount:  req.EmployeesCount,
		Rating:          req.Rating,
		Coordinates:     req.Coordinates,
		OfficialAddress: req.OfficialAddress,
		PostalAddress:   req.PostalAddress,
		CreatedBy:       createdBy,
	}
	if err := s.repo.CreateOrganization(tx, org); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &UniqueConstraintError{Name: req.Name, Type: req.Type}
		}
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	return org, nil
}

// MergeOrganizations folds org2 into org1 under a new name, summing turnover
// and employee counts and keeping the better rating, then deletes org2. Both
// rows change or neither does.
func (s *OrganizationService) MergeOrganizations(tx *gorm.DB, req requests.MergeRequest) (*models.Organization, error) {
	if req.NewName == "" {
		return nil, &ValidationError{Field: "new_name", Reason: "must not be empty"}
	}
	if req.NewAddress.Street == "" {
		return nil, &ValidationError{Field: "new_address.street", Reason: "must not be empty"}
	}

	org1, err := s.repo.GetOrganizationByID(req.OrgID1)
	if err != nil {
		return nil, err
	}
	org2, err := s.repo.GetOrganizationByID(req.OrgID2)
	if err != nil {
		return nil, err
	}
	if org1.ID == org2.ID {
		return nil, &ValidationError{Field: "org_id_2", Reason: "cannot merge an organization with itself"}
	}

	if err := s.repo.LockBusinessKey(tx, req.NewName, org1.Type); err != nil {
		return nil, fmt.Errorf("failed to acquire business key lock: %w", err)
	}
	if req.NewName != org1.Name {
		exists, err := s.repo.ExistsByBusinessKey(tx, req.NewName, org1.Type)
		if err != nil {
			return nil, fmt.Errorf("failed to check business key: %w", err)
		}
		if exists {
			return nil, &UniqueConstraintError{Name: req.NewName, Type: org1.Type}
		}
	}

	org1.Name = req.NewName
	org1.AnnualTurnover = org1.AnnualTurnover.Add(org2.AnnualTurnover)
	org1.EmployeesCount += org2.EmployeesCount
	if org2.Rating > org1.Rating {
		org1.Rating = org2.Rating
	}
	org1.OfficialAddress = req.NewAddress
	org1.PostalAddress = req.NewAddress

	if err := s.repo.UpdateOrganization(tx, org1); err != nil {
		return nil, fmt.Errorf("failed to update surviving organization: %w", err)
	}
	if err := s.repo.DeleteOrganization(tx, org2.ID); err != nil {
		return nil, fmt.Errorf("failed to delete merged organization: %w", err)
	}

	s.logger.Info("Organizations merged",
		zap.String("survivor_id", org1.ID.String()),
		zap.String("merged_id", org2.ID.String()),
		zap.String("new_name", org1.Name),
	)
	return org1, nil
}

// AbsorbOrganization folds the absorbed organization's turnover and staff into
// the absorber without renaming it, then deletes the absorbed record.
func (s *OrganizationService) AbsorbOrganization(tx *gorm.DB, req requests.AbsorbRequest) (*models.Organization, error) {
	absorber, err := s.repo.GetOrganizationByID(req.AbsorberID)
	if err != nil {
		return nil, err
	}
	absorbed, err := s.repo.GetOrganizationByID(req.AbsorbedID)
	if err != nil {
		return nil, err
	}
	if absorber.ID == absorbed.ID {
		return nil, &ValidationError{Field: "absorbed_id", Reason: "cannot absorb an organization into itself"}
	}

	absorber.AnnualTurnover = absorber.AnnualTurnover.Add(absorbed.AnnualTurnover)
	absorber.EmployeesCount += absorbed.EmployeesCount

	if err := s.repo.UpdateOrganization(tx, absorber); err != nil {
		return nil, fmt.Errorf("failed to update absorbing organization: %w", err)
	}
	if err := s.repo.DeleteOrganization(tx, absorbed.ID); err != nil {
		return nil, fmt.Errorf("failed to delete absorbed organization: %w", err)
	}

	s.logger.Info("Organization absorbed",
		zap.String("absorber_id", absorber.ID.String()),
		zap.String("absorbed_id", absorbed.ID.String()),
	)
	return absorber, nil
}
