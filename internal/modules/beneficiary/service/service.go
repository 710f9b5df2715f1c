package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"anoa.com/welfaredesk/internal/entity"
	"anoa.com/welfaredesk/internal/modules/beneficiary/dto"
	"anoa.com/welfaredesk/internal/modules/beneficiary/repository"
	"anoa.com/welfaredesk/pkg/apperror"
	"anoa.com/welfaredesk/pkg/database"
	"anoa.com/welfaredesk/pkg/media"
	"anoa.com/welfaredesk/pkg/sanitize"
	"gorm.io/gorm"
)

const (
	msgNotFound    = "Beneficiary not found."
	msgNoneFound   = "No beneficiaries found."
	msgCNICTaken   = "Beneficiary with this CNIC already exists."
	msgNumberTaken = "Beneficiary with this phone number already exists."
)

const (
	fieldImage     = "image"
	fieldCNICFront = "cnicImage.front"
	fieldCNICBack  = "cnicImage.back"
)

var (
	addSlots = []media.Slot{
		{Field: fieldImage, Label: "Profile image", Required: true},
		{Field: fieldCNICFront, Label: "CNIC front image", Required: true},
		{Field: fieldCNICBack, Label: "CNIC back image", Required: true},
	}
	editSlots = []media.Slot{
		{Field: fieldImage, Label: "Profile image"},
		{Field: fieldCNICFront, Label: "CNIC front image"},
		{Field: fieldCNICBack, Label: "CNIC back image"},
	}
)

type BeneficiaryService interface {
	List(ctx context.Context, filter dto.BeneficiaryFilter) ([]*entity.Beneficiary, error)
	FindOne(ctx context.Context, lookup dto.BeneficiaryLookup) (*entity.Beneficiary, error)
	Add(ctx context.Context, addedBy string, input dto.AddBeneficiaryInput, files media.Files) (*entity.Beneficiary, error)
	Edit(ctx context.Context, id string, input dto.EditBeneficiaryInput, files media.Files) (*entity.Beneficiary, error)
}

type beneficiaryService struct {
	repo     repository.BeneficiaryRepository
	uploader media.Uploader
}

func NewBeneficiaryService(repo repository.BeneficiaryRepository, uploader media.Uploader) BeneficiaryService {
	return &beneficiaryService{repo: repo, uploader: uploader}
}

func (s *beneficiaryService) List(ctx context.Context, filter dto.BeneficiaryFilter) ([]*entity.Beneficiary, error) {
	f := repository.Filter{AddedBy: entity.NormalizeID(filter.AddedBy)}
	if filter.Status != "" {
		f.Status, _ = entity.ParsePurposeStatus(filter.Status)
	}
	if filter.Visit != nil {
		f.Visit = *filter.Visit
	}

	beneficiaries, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(beneficiaries) == 0 {
		return nil, apperror.NotFound(msgNoneFound)
	}
	return beneficiaries, nil
}

func (s *beneficiaryService) FindOne(ctx context.Context, lookup dto.BeneficiaryLookup) (*entity.Beneficiary, error) {
	if lookup.Empty() {
		return nil, apperror.Validation("Provide at least one of name, cnic, number or id.")
	}

	l := repository.Lookup{
		ID:     entity.NormalizeID(lookup.ID),
		Name:   strings.TrimSpace(lookup.Name),
		Number: lookup.Number,
	}
	if lookup.CNIC != "" {
		cnic, err := strconv.ParseInt(lookup.CNIC, 10, 64)
		if err != nil {
			return nil, apperror.Validation("CNIC must be exactly 13 digits.")
		}
		l.CNIC = cnic
	}

	beneficiary, err := s.repo.FindOne(ctx, l)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgNotFound)
		}
		return nil, err
	}
	return beneficiary, nil
}

// Add requires all three images. The record is only built once every image
// has been hosted.
func (s *beneficiaryService) Add(ctx context.Context, addedBy string, input dto.AddBeneficiaryInput, files media.Files) (*entity.Beneficiary, error) {
	if err := s.uploader.Check(files, addSlots); err != nil {
		return nil, err
	}
	name, err := sanitize.Field("Name", input.Name, 3)
	if err != nil {
		return nil, err
	}
	address, err := sanitize.Field("Address", input.Address, 5)
	if err != nil {
		return nil, err
	}
	purpose, err := sanitize.Field("Purpose", input.Purpose, 1)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, "", input.CNIC, input.Number); err != nil {
		return nil, err
	}

	beneficiary := &entity.Beneficiary{
		Name:          name,
		CNIC:          input.CNIC,
		Number:        input.Number,
		Address:       address,
		Purpose:       strings.ToLower(purpose),
		PurposeStatus: entity.PurposeStatusPending,
		Visit:         1,
		AddedBy:       addedBy,
	}
	if input.PurposeStatus != "" {
		beneficiary.PurposeStatus, _ = entity.ParsePurposeStatus(input.PurposeStatus)
	}
	if input.Visit > 0 {
		beneficiary.Visit = input.Visit
	}

	batch, err := s.uploader.Commit(ctx, files, addSlots)
	if err != nil {
		return nil, err
	}
	beneficiary.Image, _ = batch.URL(fieldImage)
	beneficiary.CNICImage.Front, _ = batch.URL(fieldCNICFront)
	beneficiary.CNICImage.Back, _ = batch.URL(fieldCNICBack)

	if err := s.repo.Create(ctx, beneficiary); err != nil {
		_ = batch.Rollback(ctx)
		return nil, translateWriteError(err)
	}
	return beneficiary, nil
}

// Edit applies the provided fields and replaces only the images sent.
func (s *beneficiaryService) Edit(ctx context.Context, id string, input dto.EditBeneficiaryInput, files media.Files) (*entity.Beneficiary, error) {
	if err := s.uploader.Check(files, editSlots); err != nil {
		return nil, err
	}
	name, err := sanitize.OptionalField("Name", input.Name, 3)
	if err != nil {
		return nil, err
	}
	address, err := sanitize.OptionalField("Address", input.Address, 5)
	if err != nil {
		return nil, err
	}
	purpose, err := sanitize.OptionalField("Purpose", input.Purpose, 1)
	if err != nil {
		return nil, err
	}

	id = entity.NormalizeID(id)
	if !entity.IsID(id) {
		return nil, apperror.NotFound(msgNotFound)
	}
	beneficiary, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgNotFound)
		}
		return nil, err
	}

	var cnic int64
	var number string
	if input.CNIC != nil && *input.CNIC != beneficiary.CNIC {
		cnic = *input.CNIC
	}
	if input.Number != nil && *input.Number != beneficiary.Number {
		number = *input.Number
	}
	if err := s.ensureUnique(ctx, beneficiary.ID, cnic, number); err != nil {
		return nil, err
	}

	if name != nil {
		beneficiary.Name = *name
	}
	if input.CNIC != nil {
		beneficiary.CNIC = *input.CNIC
	}
	if input.Number != nil {
		beneficiary.Number = *input.Number
	}
	if address != nil {
		beneficiary.Address = *address
	}
	if purpose != nil {
		beneficiary.Purpose = strings.ToLower(*purpose)
	}
	if input.PurposeStatus != nil {
		beneficiary.PurposeStatus, _ = entity.ParsePurposeStatus(*input.PurposeStatus)
	}
	if input.Visit != nil {
		beneficiary.Visit = *input.Visit
	}

	batch, err := s.uploader.Commit(ctx, files, editSlots)
	if err != nil {
		return nil, err
	}
	var replaced []string
	for _, target := range []struct {
		field string
		url   *string
	}{
		{fieldImage, &beneficiary.Image},
		{fieldCNICFront, &beneficiary.CNICImage.Front},
		{fieldCNICBack, &beneficiary.CNICImage.Back},
	} {
		if url, ok := batch.URL(target.field); ok {
			if *target.url != "" {
				replaced = append(replaced, *target.url)
			}
			*target.url = url
		}
	}

	if err := s.repo.Update(ctx, beneficiary); err != nil {
		_ = batch.Rollback(ctx)
		return nil, translateWriteError(err)
	}

	// the record no longer points at the replaced images
	_ = s.uploader.Discard(ctx, replaced...)
	return beneficiary, nil
}

// ensureUnique checks the given cnic and number against other beneficiaries.
// Zero values are skipped.
func (s *beneficiaryService) ensureUnique(ctx context.Context, selfID string, cnic int64, number string) error {
	checks := []struct {
		lookup  repository.Lookup
		skip    bool
		message string
	}{
		{repository.Lookup{CNIC: cnic}, cnic == 0, msgCNICTaken},
		{repository.Lookup{Number: number}, number == "", msgNumberTaken},
	}

	for _, check := range checks {
		if check.skip {
			continue
		}
		existing, err := s.repo.FindOne(ctx, check.lookup)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}
		if existing.ID != selfID {
			return apperror.Conflict(check.message)
		}
	}
	return nil
}

func translateWriteError(err error) error {
	constraint, ok := database.UniqueViolation(err)
	if !ok {
		return err
	}
	if strings.Contains(constraint, "number") {
		return apperror.Conflict(msgNumberTaken)
	}
	return apperror.Conflict(msgCNICTaken)
}
