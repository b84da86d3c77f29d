package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/vendor-signup-service/internal/domain"
	apperrors "github.com/spec-kit/vendor-signup-service/pkg/util/errorutil"
)

var demoApplicants = []struct {
	name    string
	phone   string
	address string
	company string
	reason  string
}{
	{"Aarav Kumaravel", "9841203311", "12, R. S. Puram, Coimbatore - 641002, Tamil Nadu", "Covai Fresh Kaigari Store", "New vegetable shop in Gandhipuram seeking online presence."},
	{"Ananya Krish", "9840011223", "45, Usman Road, T. Nagar, Chennai - 600017, Tamil Nadu", "Chennai Green Grocers", "Expanding our T. Nagar vegetable delivery service."},
	{"Arjun Pandian", "9842233445", "78B, Simmakkal Main Road, Madurai - 625001, Tamil Nadu", "Madurai Malligai Vegetables", "Listing fresh farm produce including keerai."},
	{"Deepika Selvam", "9843344556", "Plot 101, Cherry Road, Hasthampatti, Salem - 636007, Tamil Nadu", "Salem Organic Farmers Market", "Certified organic vegetables from our Salem farms."},
	{"Karthik Natarajan", "9844455667", "22, Trivandrum Road, Palayamkottai, Tirunelveli - 627002, Tamil Nadu", "Nellai Natural Produce", "Native Tirunelveli vegetables and greens."},
	{"Meera Gopal", "9845566778", "3/50, Perundurai Road, Erode - 638011, Tamil Nadu", "Erode Manjal Online Mart", "Turmeric and fresh vegetables from the Erode region."},
}

var demoStatuses = []domain.SignupStatus{
	domain.SignupStatusPendingApproval,
	domain.SignupStatusPendingApproval,
	domain.SignupStatusApproved,
	domain.SignupStatusRejected,
	domain.SignupStatusPendingApproval,
}

// DemoSignupRequests builds the fixed demo data set used by development environments.
func DemoSignupRequests(now time.Time) []domain.SignupRequest {
	requests := make([]domain.SignupRequest, 0, len(demoApplicants))
	for i, applicant := range demoApplicants {
		firstName := strings.ToLower(strings.Fields(applicant.name)[0])
		requests = append(requests, domain.SignupRequest{
			ID:              fmt.Sprintf("signupTN%03d", i+1),
			FullName:        applicant.name,
			Email:           firstName + "@example.co.in",
			PhoneNumber:     applicant.phone,
			Address:         applicant.address,
			CompanyName:     applicant.company,
			ReasonForSignup: applicant.reason,
			Password:        fmt.Sprintf("Pass@%d", 1000+(i+1)*1111%9000),
			RequestedDate:   now.Add(-time.Duration(i+1) * 24 * time.Hour).UTC(),
			Status:          demoStatuses[i%len(demoStatuses)],
		})
	}
	return requests
}

// SeedSignupRequests inserts records missing from repo and reports how many were added.
func SeedSignupRequests(ctx context.Context, repo SignupRequestRepository, records []domain.SignupRequest) (int, error) {
	added := 0
	for i := range records {
		err := repo.Create(ctx, &records[i])
		if apperrors.IsCode(err, apperrors.CodeConflict) {
			continue
		}
		if err != nil {
			return added, fmt.Errorf("seed %s: %w", records[i].ID, err)
		}
		added++
	}
	return added, nil
}
