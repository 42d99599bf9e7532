package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"coursetrack/backend/apperr"
	"coursetrack/backend/cache"
	"coursetrack/backend/models"
	"coursetrack/backend/repository"
	"coursetrack/backend/utils"
)

const (
	// RequiredCompletionPercent gates certificate issuance.
	RequiredCompletionPercent = 80

	certificateSuffixLen  = 4
	maxCertificateMinting = 5
)

var errCertificateNumberExhausted = errors.New("could not mint a unique certificate number")

// ShareView is the public face of a certificate.
type ShareView struct {
	UserName          string    `json:"user_name"`
	CourseName        string    `json:"course_name"`
	CertificateNumber string    `json:"certificate_number"`
	IssuedAt          time.Time `json:"issued_at"`
	CompletionPercent int       `json:"completion_percent"`
}

type CertificateService interface {
	Issue(ctx context.Context, userID, courseID uint) (*models.Certificate, error)
	VerifyByCertificateNumber(ctx context.Context, number string) (*models.Certificate, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.Certificate, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID uint) (*models.Certificate, error)
	GetForSharing(ctx context.Context, number string) (*ShareView, error)
}

type certificateService struct {
	log          *utils.Logger
	certificates repository.CertificateRepo
	users        repository.UserRepo
	courses      repository.CourseRepo
	completion   CompletionService
	cache        cache.CertificateCache
	prefix       string
	opts         options
}

func NewCertificateService(
	log *utils.Logger,
	certificates repository.CertificateRepo,
	users repository.UserRepo,
	courses repository.CourseRepo,
	completion CompletionService,
	certCache cache.CertificateCache,
	prefix string,
	opts ...Option,
) CertificateService {
	if certCache == nil {
		certCache = cache.NewNopCertificateCache()
	}
	if prefix == "" {
		prefix = "HD"
	}
	return &certificateService{
		log:          log.With("service", "CertificateService"),
		certificates: certificates,
		users:        users,
		courses:      courses,
		completion:   completion,
		cache:        certCache,
		prefix:       prefix,
		opts:         buildOptions(opts),
	}
}

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomBase36(n int) (string, error) {
	var b strings.Builder
	radix := big.NewInt(int64(len(base36Alphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, radix)
		if err != nil {
			return "", err
		}
		b.WriteByte(base36Alphabet[idx.Int64()])
	}
	return b.String(), nil
}

// newNumber builds PREFIX-<unix ms in base 36>-<random suffix>.
func (s *certificateService) newNumber(at time.Time) (string, error) {
	suffix, err := s.opts.suffix(certificateSuffixLen)
	if err != nil {
		return "", fmt.Errorf("certificate suffix: %w", err)
	}
	stamp := strings.ToUpper(strconv.FormatInt(at.UnixMilli(), 36))
	return fmt.Sprintf("%s-%s-%s", s.prefix, stamp, suffix), nil
}

// Issue returns the learner's certificate for the course, creating it once
// completion reaches RequiredCompletionPercent. Concurrent callers for the
// same pair all get the single stored row.
func (s *certificateService) Issue(ctx context.Context, userID, courseID uint) (*models.Certificate, error) {
	existing, err := s.certificates.GetByUserAndCourse(ctx, nil, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("lookup certificate: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	completion, err := s.completion.Measure(ctx, nil, userID, courseID)
	if err != nil {
		return nil, err
	}
	if completion.PublishedLessons == 0 {
		return nil, apperr.ErrCourseNotReady
	}
	if completion.Percent < RequiredCompletionPercent {
		return nil, apperr.InsufficientCompletion(completion.Percent, RequiredCompletionPercent)
	}

	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, apperr.ErrUserNotFound
	}
	course, err := s.courses.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course == nil {
		return nil, apperr.ErrCourseNotFound
	}

	for i := 0; i < maxCertificateMinting; i++ {
		issuedAt := s.opts.now()
		number, err := s.newNumber(issuedAt)
		if err != nil {
			return nil, err
		}

		cert := &models.Certificate{
			UserID:            userID,
			CourseID:          courseID,
			UserName:          user.DisplayName(),
			CourseName:        course.Title,
			CompletionPercent: completion.Percent,
			IssuedAt:          issuedAt,
			CertificateNumber: number,
		}
		created, err := s.certificates.CreateIfAbsent(ctx, nil, cert)
		if err != nil {
			return nil, fmt.Errorf("create certificate: %w", err)
		}
		if created {
			s.log.Info("certificate issued",
				"user_id", userID, "course_id", courseID, "certificate_number", number)
			return cert, nil
		}

		winner, err := s.certificates.GetByUserAndCourse(ctx, nil, userID, courseID)
		if err != nil {
			return nil, fmt.Errorf("lookup certificate: %w", err)
		}
		if winner != nil {
			return winner, nil
		}
		s.log.Warn("certificate number collision, retrying", "certificate_number", number)
	}
	return nil, fmt.Errorf("issue certificate: %w", errCertificateNumberExhausted)
}

func (s *certificateService) VerifyByCertificateNumber(ctx context.Context, number string) (*models.Certificate, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, nil
	}

	if cert, err := s.cache.Get(ctx, number); err != nil {
		s.log.Warn("certificate cache read failed", "certificate_number", number, "error", err)
	} else if cert != nil {
		return cert, nil
	}

	cert, err := s.certificates.GetByNumber(ctx, nil, number)
	if err != nil {
		return nil, fmt.Errorf("verify certificate: %w", err)
	}
	if cert == nil {
		return nil, nil
	}
	if err := s.cache.Set(ctx, cert); err != nil {
		s.log.Warn("certificate cache write failed", "certificate_number", number, "error", err)
	}
	return cert, nil
}

func (s *certificateService) ListByUser(ctx context.Context, userID uint) ([]*models.Certificate, error) {
	return s.certificates.GetByUserID(ctx, nil, userID)
}

func (s *certificateService) GetByUserAndCourse(ctx context.Context, userID, courseID uint) (*models.Certificate, error) {
	return s.certificates.GetByUserAndCourse(ctx, nil, userID, courseID)
}

func (s *certificateService) GetForSharing(ctx context.Context, number string) (*ShareView, error) {
	cert, err := s.VerifyByCertificateNumber(ctx, number)
	if err != nil || cert == nil {
		return nil, err
	}
	return &ShareView{
		UserName:          cert.UserName,
		CourseName:        cert.CourseName,
		CertificateNumber: cert.CertificateNumber,
		IssuedAt:          cert.IssuedAt,
		CompletionPercent: cert.CompletionPercent,
	}, nil
}
