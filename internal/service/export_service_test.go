package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mei-dev/tutor-center-api/internal/models"
)

type courseDetailStub struct {
	detail *models.CourseWithDetails
	err    error
}

func (s *courseDetailStub) Get(ctx context.Context, id string) (*models.CourseWithDetails, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.detail, nil
}

func rosterCourseStub() *courseDetailStub {
	phone := "13800138000"
	return &courseDetailStub{detail: &models.CourseWithDetails{
		Course: models.Course{ID: "c1", StartTime: "2026-03-01 09:00", Status: models.CourseStatusNotStarted},
		Students: []models.StudentPublic{
			{ID: "s1", Name: "Student One", Gender: 1, Phone: &phone},
			{ID: "s2", Name: "Student Two", Gender: 0},
		},
	}}
}

func TestExportServiceRenderRosterCSV(t *testing.T) {
	svc := NewExportService(rosterCourseStub(), nil, nil, zap.NewNop())

	result, err := svc.RenderRoster(context.Background(), "c1", RosterFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Payload)
	assert.Contains(t, body, "Student ID,Name,Gender,Phone,Address,Remark")
	assert.Contains(t, body, "Student One")
	assert.Contains(t, body, "13800138000")
	assert.Contains(t, body, "female")
}

func TestExportServiceRenderRosterPDF(t *testing.T) {
	svc := NewExportService(rosterCourseStub(), nil, nil, zap.NewNop())

	result, err := svc.RenderRoster(context.Background(), "c1", RosterFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.NotEmpty(t, result.Payload)
}

func TestParseRosterFormat(t *testing.T) {
	format, ok := ParseRosterFormat("")
	require.True(t, ok)
	assert.Equal(t, RosterFormatCSV, format)

	format, ok = ParseRosterFormat("PDF")
	require.True(t, ok)
	assert.Equal(t, RosterFormatPDF, format)

	_, ok = ParseRosterFormat("xlsx")
	assert.False(t, ok)
}
