package postgres

import (
	"github.com/emailauth/relayer/internal/domain"
)

func toDBModel(req *domain.Request) requestRow {
	return requestRow{
		ID:                  req.ID,
		EmailAddress:        req.EmailAddress,
		Command:             req.Command,
		AccountCode:         req.AccountCode,
		Subject:             req.Subject,
		Body:                req.Body,
		Chain:               req.TxAuth.Chain,
		DKIMContractAddress: req.TxAuth.DKIMContractAddress,
		TemplateID:          int64(req.TxAuth.TemplateID),
		CommandParams:       req.TxAuth.CommandParams,
		Status:              string(req.Status),
		AttemptCount:        req.AttemptCount,
		NextRetryAt:         req.NextRetryAt,
		CreatedAt:           req.CreatedAt,
		UpdatedAt:           req.UpdatedAt,
	}
}

func toDomain(row requestRow) *domain.Request {
	return &domain.Request{
		ID:           row.ID,
		EmailAddress: row.EmailAddress,
		Command:      row.Command,
		AccountCode:  row.AccountCode,
		Subject:      row.Subject,
		Body:         row.Body,
		TxAuth: domain.TxAuth{
			Chain:               row.Chain,
			DKIMContractAddress: row.DKIMContractAddress,
			TemplateID:          uint64(row.TemplateID),
			CommandParams:       row.CommandParams,
		},
		Status:       domain.RequestStatus(row.Status),
		AttemptCount: row.AttemptCount,
		NextRetryAt:  row.NextRetryAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
