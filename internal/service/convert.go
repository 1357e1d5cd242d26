package service

import (
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/dto"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/storage"
)

// ── model → dto 转换 ──

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		Type:      string(user.Type),
		CreatedAt: user.CreatedAt,
	}
}

func toProfessorBrief(p *model.Professor) *dto.ProfessorBrief {
	if p == nil {
		return nil
	}
	brief := &dto.ProfessorBrief{ID: p.ProfessorID}
	if p.User != nil {
		brief.Name = p.User.Name
		brief.Email = p.User.Email
	}
	return brief
}

func toProfessorResponse(p *model.Professor) dto.ProfessorResponse {
	resp := dto.ProfessorResponse{
		ID:         p.ProfessorID,
		UserID:     p.UserID,
		Specialite: p.Specialite,
		Phone:      p.Phone,
	}
	if p.User != nil {
		resp.Name = p.User.Name
		resp.Email = p.User.Email
		resp.Type = string(p.User.Type)
	}
	return resp
}

func toStudentResponse(s *model.Student) dto.StudentResponse {
	resp := dto.StudentResponse{
		ID:         s.StudentID,
		UserID:     s.UserID,
		Matricule:  s.Matricule,
		Filiere:    s.Filiere,
		StageType:  string(s.StageType),
		Phone:      s.Phone,
		Encadrant:  toProfessorBrief(s.Encadrant),
		Rapporteur: toProfessorBrief(s.Rapporteur),
	}
	if s.User != nil {
		resp.Name = s.User.Name
		resp.Email = s.User.Email
	}
	return resp
}

func toStudentBrief(s *model.Student) *dto.StudentBrief {
	if s == nil {
		return nil
	}
	brief := &dto.StudentBrief{
		ID:        s.StudentID,
		Matricule: s.Matricule,
		Filiere:   s.Filiere,
	}
	if s.User != nil {
		brief.Name = s.User.Name
		brief.Email = s.User.Email
	}
	return brief
}

func toReportResponse(r *model.Report, store storage.Store) dto.ReportResponse {
	resp := dto.ReportResponse{
		ID:               r.ReportID,
		StudentID:        r.StudentID,
		Student:          toStudentBrief(r.Student),
		FilePath:         r.FilePath,
		OriginalFilename: r.OriginalFilename,
		Version:          string(r.Version),
		Status:           string(r.Status),
		SubmittedAt:      r.SubmittedAt,
		ValidatedAt:      r.ValidatedAt,
	}
	if store != nil {
		resp.FileURL = store.URL(r.FilePath)
	}
	return resp
}

func toRemarkResponse(r *model.Remark) dto.RemarkResponse {
	return dto.RemarkResponse{
		ID:        r.RemarkID,
		ReportID:  r.ReportID,
		Professor: toProfessorBrief(r.Professor),
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
}

func toJuryMemberResponse(a *model.JuryAssignment) dto.JuryMemberResponse {
	return dto.JuryMemberResponse{
		ID:        a.JuryAssignmentID,
		Role:      string(a.Role),
		Professor: toProfessorBrief(a.Professor),
	}
}

func toDefenseResponse(d *model.Defense, store storage.Store) dto.DefenseResponse {
	resp := dto.DefenseResponse{
		ID:          d.DefenseID,
		StudentID:   d.StudentID,
		Student:     toStudentBrief(d.Student),
		ReportID:    d.ReportID,
		ScheduledAt: d.ScheduledAt,
		Salle:       d.Salle,
		Status:      string(d.Status),
		Jury:        make([]dto.JuryMemberResponse, 0, len(d.Jury)),
	}
	if d.Report != nil {
		report := toReportResponse(d.Report, store)
		resp.Report = &report
	}
	for i := range d.Jury {
		resp.Jury = append(resp.Jury, toJuryMemberResponse(&d.Jury[i]))
	}
	return resp
}
