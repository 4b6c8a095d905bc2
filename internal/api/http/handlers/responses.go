package handlers

import (
	"github.com/spec-kit/repair-service/internal/api/dto"
	"github.com/spec-kit/repair-service/internal/domain"
)

func userSummary(user *domain.User) dto.UserSummary {
	return dto.UserSummary{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Email:    user.Email,
		Role:     user.Role,
		StoreID:  user.StoreID,
	}
}

func jobSummary(job *domain.Job) dto.JobSummary {
	return dto.JobSummary{
		ID:                 job.ID,
		CustomerID:         job.CustomerID,
		StoreID:            job.StoreID,
		DeviceType:         job.DeviceType,
		DeviceModel:        job.DeviceModel,
		ProblemDescription: job.ProblemDescription,
		Status:             job.Status,
		DepositCost:        job.DepositCost,
		RawCost:            job.RawCost,
		EstimateCost:       job.EstimateCost,
		ActualCost:         job.ActualCost,
		PaymentStatus:      job.PaymentStatus,
		PaymentMethod:      job.PaymentMethod,
		CreatedAt:          job.CreatedAt,
		UpdatedAt:          job.UpdatedAt,
		StartedAt:          job.StartedAt,
		CompletedAt:        job.CompletedAt,
	}
}

func noteResponse(note *domain.JobNote) dto.JobNoteResponse {
	return dto.JobNoteResponse{
		ID:        note.ID,
		JobID:     note.JobID,
		Note:      note.Note,
		NoteType:  note.NoteType,
		CreatedAt: note.CreatedAt,
	}
}

func assignmentResponse(assignment *domain.TechnicianAssignment) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		ID:           assignment.ID,
		TechnicianID: assignment.TechnicianID,
		AssignedBy:   assignment.AssignedBy,
		Status:       assignment.Status,
		Notes:        assignment.Notes,
		AssignedAt:   assignment.AssignedAt,
		StartedAt:    assignment.StartedAt,
		CompletedAt:  assignment.CompletedAt,
	}
}

func customerResponse(customer *domain.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		Phone:     customer.Phone,
		Email:     customer.Email,
		Address:   customer.Address,
		StoreID:   customer.StoreID,
		CreatedAt: customer.CreatedAt,
	}
}

func storeResponse(store *domain.Store) dto.StoreResponse {
	return dto.StoreResponse{
		ID:        store.ID,
		Name:      store.Name,
		Location:  store.Location,
		Phone:     store.Phone,
		Email:     store.Email,
		CreatedAt: store.CreatedAt,
	}
}
