package controllers

import (
	"coursetrack/backend/services"
	"coursetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CertificatesController struct {
	Certificates services.CertificateService
}

func NewCertificatesController(svc *services.Services) *CertificatesController {
	return &CertificatesController{Certificates: svc.Certificates}
}

// IssueCertificate godoc
// @Summary Issue course certificate
// @Description Issues the caller's certificate once at least 80% of the course is completed. Repeated calls return the same certificate.
// @Tags certificates
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/certificate [post]
func (cc *CertificatesController) IssueCertificate(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.FromError(c, err)
	}

	cert, err := cc.Certificates.Issue(c.UserContext(), userID, courseID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, cert)
}

func (cc *CertificatesController) GetCourseCertificate(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.FromError(c, err)
	}

	cert, err := cc.Certificates.GetByUserAndCourse(c.UserContext(), userID, courseID)
	if err != nil {
		return utils.FromError(c, err)
	}
	if cert == nil {
		return utils.NotFound(c, "certificate not issued")
	}
	return utils.OK(c, cert)
}

func (cc *CertificatesController) ListCertificates(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}
	certs, err := cc.Certificates.ListByUser(c.UserContext(), userID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, certs)
}

// VerifyCertificate godoc
// @Summary Verify certificate
// @Description Public lookup by certificate number
// @Tags certificates
// @Produce json
// @Param number path string true "Certificate number"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /certificates/verify/{number} [get]
func (cc *CertificatesController) VerifyCertificate(c *fiber.Ctx) error {
	view, err := cc.Certificates.GetForSharing(c.UserContext(), c.Params("number"))
	if err != nil {
		return utils.FromError(c, err)
	}
	if view == nil {
		return utils.NotFound(c, "certificate not found")
	}
	return utils.OK(c, view)
}
