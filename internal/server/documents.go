package server

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/common"
	"github.com/joseph-ayodele/permit-compliance/internal/entity"
	"github.com/joseph-ayodele/permit-compliance/internal/export"
	"github.com/joseph-ayodele/permit-compliance/internal/services/document"
)

const xlsxMediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DocumentHandler serves the /documents routes.
type DocumentHandler struct {
	svc      *document.Service
	exporter *export.Service
	logger   *slog.Logger
}

func NewDocumentHandler(svc *document.Service, exporter *export.Service, logger *slog.Logger) *DocumentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentHandler{svc: svc, exporter: exporter, logger: logger}
}

func (h *DocumentHandler) Register(r fiber.Router) {
	r.Post("/documents", h.upload)
	r.Get("/documents", h.list)
	r.Get("/documents/:id", h.get)
	r.Delete("/documents/:id", h.delete)
	r.Get("/documents/:id/download", h.download)
	r.Get("/documents/:id/compliance", h.compliance)
	r.Get("/documents/:id/compliance/export", h.exportCompliance)
	r.Post("/documents/:id/reviews", h.addReview)
	r.Get("/documents/:id/reviews", h.listReviews)
	r.Put("/documents/:id/status", h.updateStatus)
}

type dataResponse struct {
	Success bool `json:"success"`
	Count   *int `json:"count,omitempty"`
	Data    any  `json:"data"`
}

func ok(data any) dataResponse { return dataResponse{Success: true, Data: data} }

func okList(data any, n int) dataResponse {
	return dataResponse{Success: true, Count: &n, Data: data}
}

func (h *DocumentHandler) upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return common.InvalidArgumentError("Please upload a file")
	}
	if fh.Size > constants.MaxUploadBytes {
		return common.InvalidArgumentErrorf("file is larger than %d bytes", constants.MaxUploadBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, constants.MaxUploadBytes+1))
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	doc, err := h.svc.Upload(c.UserContext(), document.UploadRequest{
		FileName:      fh.Filename,
		MediaType:     fh.Header.Get(fiber.HeaderContentType),
		Data:          data,
		ApplicationID: c.FormValue("applicationId"),
		CategoryID:    c.FormValue("categoryId"),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(ok(doc))
}

func (h *DocumentHandler) list(c *fiber.Ctx) error {
	docs, err := h.svc.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(okList(withoutText(docs), len(docs)))
}

// withoutText drops extracted text from list entries. A single document
// fetch still returns it.
func withoutText(docs []*entity.Document) []*entity.Document {
	out := make([]*entity.Document, len(docs))
	for i, d := range docs {
		cp := *d
		cp.ExtractedText = ""
		out[i] = &cp
	}
	return out
}

func (h *DocumentHandler) get(c *fiber.Ctx) error {
	id, err := documentID(c)
	if err != nil {
		return err
	}
	doc, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(ok(doc))
}

func (h *DocumentHandler) delete(c *fiber.Ctx) error {
	id, err := documentID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(ok(fiber.Map{}))
}

func (h *DocumentHandler) download(c *fiber.Ctx) error {
	id, err := documentID(c)
	if err != nil {
		return err
	}
	f, err := h.svc.Download(c.UserContext(), id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, f.FileType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", f.FileName))
	c.Set(fiber.HeaderContentLength, strconv.Itoa(len(f.Data)))
	return c.Send(f.Data)
}

func (h *DocumentHandler) compliance(c *fiber.Ctx) error {
	id, err := documentID(c)
	if err != nil {
		return err
	}
	res, err := h.svc.CheckCompliance(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(ok(res))
}

func (h *DocumentHandler) exportCompliance(c *fiber.Ctx) error {
	id, err := documentID(c)
	if err != nil {
		return err
	}
	doc, res, err := h.svc.LatestCompliance(c.UserContext(), id)
	if err != nil {
		return err
	}
	xlsx, err := h.exporter.ComplianceReportXLSX(doc, res)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxMediaType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "compliance-"+id.String()+".xlsx"))
	return c.Send(xlsx)
}

type reviewBody struct {
	ReviewerName string `json:"reviewerName"`
	Comments     string `json:"comments"`
	Status       string `json:"status"`
}

func (h *DocumentHandler) addReview(c *fiber.Ctx) error {
	id, err := documentID(c)
	if err != nil {
		return err
	}
	var body reviewBody
	if err := c.BodyParser(&body); err != nil {
		return common.InvalidArgumentError("invalid request body")
	}
	review, err := h.svc.AddReview(c.UserContext(), id, document.ReviewRequest{
		ReviewerName: body.ReviewerName,
		Comments:     body.Comments,
		Status:       body.Status,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(ok(review))
}

func (h *DocumentHandler) listReviews(c *fiber.Ctx) error {
	id, err := documentID(c)
	if err != nil {
		return err
	}
	reviews, err := h.svc.ListReviews(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(okList(reviews, len(reviews)))
}

type statusBody struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason"`
}

func (h *DocumentHandler) updateStatus(c *fiber.Ctx) error {
	id, err := documentID(c)
	if err != nil {
		return err
	}
	var body statusBody
	if err := c.BodyParser(&body); err != nil {
		return common.InvalidArgumentError("invalid request body")
	}
	doc, err := h.svc.UpdateStatus(c.UserContext(), id, document.StatusRequest{
		Status:          body.Status,
		RejectionReason: body.RejectionReason,
	})
	if err != nil {
		return err
	}
	return c.JSON(ok(doc))
}

func documentID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, common.InvalidArgumentError("invalid document id")
	}
	return id, nil
}
