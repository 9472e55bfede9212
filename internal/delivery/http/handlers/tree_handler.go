package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/usecase"
	enrollmentdto "github.com/nexaline/comp-service/internal/usecase/dto/enrollment"
)

type TreeHandler struct {
	treeUc usecase.TreeUsecase
}

func NewTreeHandler(treeUc usecase.TreeUsecase) *TreeHandler {
	return &TreeHandler{treeUc: treeUc}
}

type EnrollRequest struct {
	DistributorID     string    `json:"distributor_id"`
	SponsorID         string    `json:"sponsor_id"`
	PlacementParentID string    `json:"placement_parent_id"`
	PlacementLeg      string    `json:"placement_leg" validate:"omitempty,oneof=left right"`
	EnrolledAt        time.Time `json:"enrolled_at"`
}

type PlaceBinaryRequest struct {
	DistributorID string `json:"distributor_id" validate:"required"`
	ParentID      string `json:"parent_id" validate:"required"`
	Leg           string `json:"leg" validate:"required,oneof=left right"`
}

type DistributorResponse struct {
	ID             string    `json:"id"`
	SponsorID      string    `json:"sponsor_id,omitempty"`
	BinaryParentID string    `json:"binary_parent_id,omitempty"`
	BinaryLeg      string    `json:"binary_leg,omitempty"`
	Status         string    `json:"status"`
	Rank           int       `json:"rank"`
	HighestRank    int       `json:"highest_rank"`
	EnrolledAt     time.Time `json:"enrolled_at"`
}

func toDistributorResponse(d *domain.Distributor) DistributorResponse {
	resp := DistributorResponse{
		ID:          d.ID,
		Status:      string(d.Status),
		Rank:        int(d.Rank),
		HighestRank: int(d.HighestRank),
		EnrolledAt:  d.EnrolledAt,
	}
	if d.SponsorID != nil {
		resp.SponsorID = *d.SponsorID
	}
	if d.BinaryParentID != nil {
		resp.BinaryParentID = *d.BinaryParentID
	}
	if d.BinaryLeg != nil {
		resp.BinaryLeg = string(*d.BinaryLeg)
	}
	return resp
}

func (h *TreeHandler) Enroll(c echo.Context) error {
	var req EnrollRequest
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	enrolledAt := req.EnrolledAt
	if enrolledAt.IsZero() {
		enrolledAt = time.Now()
	}
	distributor, err := h.treeUc.Enroll(&enrollmentdto.EnrollInput{
		DistributorID:     req.DistributorID,
		SponsorID:         req.SponsorID,
		PlacementParentID: req.PlacementParentID,
		PlacementLeg:      domain.BinaryLeg(req.PlacementLeg),
		EnrolledAt:        enrolledAt,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toDistributorResponse(distributor))
}

func (h *TreeHandler) PlaceBinary(c echo.Context) error {
	var req PlaceBinaryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	err := h.treeUc.PlaceBinary(&enrollmentdto.PlaceBinaryInput{
		DistributorID: req.DistributorID,
		ParentID:      req.ParentID,
		Leg:           domain.BinaryLeg(req.Leg),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TreeHandler) GetDistributor(c echo.Context) error {
	distributor, err := h.treeUc.GetDistributor(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toDistributorResponse(distributor))
}
