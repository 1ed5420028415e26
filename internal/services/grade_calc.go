package services

import (
	"math"
	"sort"

	"smp/internal/models"

	"gorm.io/gorm"
)

// GradeCalcService 成绩聚合引擎：加权平均、GPA、等级分布、趋势
type GradeCalcService struct {
	db           *gorm.DB
	scaleService *GradingScaleService
	typeService  *GradeTypeService
}

func NewGradeCalcService(db *gorm.DB) *GradeCalcService {
	return &GradeCalcService{
		db:           db,
		scaleService: NewGradingScaleService(db),
		typeService:  NewGradeTypeService(db),
	}
}

// TypeBreakdown 单个成绩类型的统计
type TypeBreakdown struct {
	GradeTypeID   uint     `json:"grade_type_id"`
	GradeTypeName string   `json:"grade_type_name"`
	Weight        *float64 `json:"weight"`
	Count         int      `json:"count"`
	Average       float64  `json:"average"`
}

// SubjectAverage 学生单科聚合结果
type SubjectAverage struct {
	StudentID       uint            `json:"student_id"`
	SubjectID       uint            `json:"subject_id"`
	GradeCount      int             `json:"grade_count"`
	WeightedAverage float64         `json:"weighted_average"`
	Weighted        bool            `json:"weighted"` // false表示退化为算术平均
	Letter          string          `json:"letter"`
	GPA             float64         `json:"gpa"`
	Breakdown       []TypeBreakdown `json:"breakdown"`
}

// SubjectLine 学生总览中的单科行
type SubjectLine struct {
	SubjectID   uint    `json:"subject_id"`
	SubjectName string  `json:"subject_name"`
	Average     float64 `json:"average"`
	Letter      string  `json:"letter"`
	GPA         float64 `json:"gpa"`
}

// StudentSummary 学生跨科目总览
type StudentSummary struct {
	StudentID      uint           `json:"student_id"`
	Subjects       []SubjectLine  `json:"subjects"`
	OverallAverage float64        `json:"overall_average"`
	OverallLetter  string         `json:"overall_letter"`
	OverallGPA     float64        `json:"overall_gpa"`
	Distribution   map[string]int `json:"distribution"`
	Trend          string         `json:"trend"`
}

// ClassSubjectStats 班级单科统计
type ClassSubjectStats struct {
	ClassID      uint           `json:"class_id"`
	SubjectID    uint           `json:"subject_id"`
	StudentCount int            `json:"student_count"`
	GradeCount   int            `json:"grade_count"`
	Average      float64        `json:"average"`
	Highest      float64        `json:"highest"`
	Lowest       float64        `json:"lowest"`
	Distribution map[string]int `json:"distribution"`
}

// 趋势取值
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// round2 四舍五入保留两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// StudentSubjectAverage 学生单科加权平均
// publishedOnly=true为面向学生/家长的口径，只统计已发布成绩
func (s *GradeCalcService) StudentSubjectAverage(tenantID, studentID, subjectID uint, termID *uint, publishedOnly bool) (*SubjectAverage, error) {
	grades, err := s.fetchGrades(tenantID, &studentID, nil, &subjectID, termID, publishedOnly)
	if err != nil {
		return nil, err
	}

	result := &SubjectAverage{
		StudentID:  studentID,
		SubjectID:  subjectID,
		GradeCount: len(grades),
		Breakdown:  []TypeBreakdown{},
	}
	if len(grades) == 0 {
		return result, nil
	}

	types, err := s.typeService.ListOrSeed(tenantID)
	if err != nil {
		return nil, err
	}
	typeByID := make(map[uint]*models.GradeType, len(types))
	for _, t := range types {
		typeByID[t.ID] = t
	}

	// 按类型分桶求各自平均
	byType := make(map[uint][]float64)
	for _, g := range grades {
		byType[g.GradeTypeID] = append(byType[g.GradeTypeID], g.Percentage)
	}

	typeIDs := make([]uint, 0, len(byType))
	for id := range byType {
		typeIDs = append(typeIDs, id)
	}
	sort.Slice(typeIDs, func(i, j int) bool { return typeIDs[i] < typeIDs[j] })

	weightedSum := 0.0
	weightTotal := 0.0
	for _, typeID := range typeIDs {
		values := byType[typeID]
		avg := mean(values)

		breakdown := TypeBreakdown{
			GradeTypeID: typeID,
			Count:       len(values),
			Average:     round2(avg),
		}
		if gt, ok := typeByID[typeID]; ok {
			breakdown.GradeTypeName = gt.Name
			breakdown.Weight = gt.Weight
			if gt.Weight != nil && *gt.Weight > 0 {
				weightedSum += avg * *gt.Weight
				weightTotal += *gt.Weight
			}
		}
		result.Breakdown = append(result.Breakdown, breakdown)
	}

	// 存在正权重类型时按权重归一，否则退化为全部成绩的算术平均
	if weightTotal > 0 {
		result.WeightedAverage = round2(weightedSum / weightTotal)
		result.Weighted = true
	} else {
		all := make([]float64, 0, len(grades))
		for _, g := range grades {
			all = append(all, g.Percentage)
		}
		result.WeightedAverage = round2(mean(all))
	}

	scale, err := s.scaleService.GetOrSeed(tenantID)
	if err != nil {
		return nil, err
	}
	result.Letter = scale.LetterFor(result.WeightedAverage)
	result.GPA = scale.GPAFor(result.Letter)
	return result, nil
}

// StudentSummaryReport 学生跨科目总览：逐科加权平均、总平均、GPA、等级分布、趋势
func (s *GradeCalcService) StudentSummaryReport(tenantID, studentID uint, termID *uint, publishedOnly bool) (*StudentSummary, error) {
	grades, err := s.fetchGrades(tenantID, &studentID, nil, nil, termID, publishedOnly)
	if err != nil {
		return nil, err
	}

	summary := &StudentSummary{
		StudentID:    studentID,
		Subjects:     []SubjectLine{},
		Distribution: map[string]int{},
		Trend:        TrendStable,
	}
	if len(grades) == 0 {
		return summary, nil
	}

	scale, err := s.scaleService.GetOrSeed(tenantID)
	if err != nil {
		return nil, err
	}

	subjectIDs := make([]uint, 0)
	seen := make(map[uint]bool)
	subjectNames := make(map[uint]string)
	for _, g := range grades {
		if !seen[g.SubjectID] {
			seen[g.SubjectID] = true
			subjectIDs = append(subjectIDs, g.SubjectID)
		}
		if g.Subject != nil {
			subjectNames[g.SubjectID] = g.Subject.Name
		}
	}
	sort.Slice(subjectIDs, func(i, j int) bool { return subjectIDs[i] < subjectIDs[j] })

	// 总平均为各科加权平均的算术平均，科目之间等权
	subjectTotal := 0.0
	gpaTotal := 0.0
	for _, subjectID := range subjectIDs {
		avg, err := s.StudentSubjectAverage(tenantID, studentID, subjectID, termID, publishedOnly)
		if err != nil {
			return nil, err
		}
		line := SubjectLine{
			SubjectID:   subjectID,
			SubjectName: subjectNames[subjectID],
			Average:     avg.WeightedAverage,
			Letter:      avg.Letter,
			GPA:         avg.GPA,
		}
		summary.Subjects = append(summary.Subjects, line)
		subjectTotal += avg.WeightedAverage
		gpaTotal += avg.GPA
	}
	summary.OverallAverage = round2(subjectTotal / float64(len(subjectIDs)))
	summary.OverallLetter = scale.LetterFor(summary.OverallAverage)
	summary.OverallGPA = round2(gpaTotal / float64(len(subjectIDs)))

	// 分布按单条成绩的等级字母计数
	for _, g := range grades {
		summary.Distribution[scale.LetterFor(g.Percentage)]++
	}

	summary.Trend = CalculateTrend(grades)
	return summary, nil
}

// ClassSubjectAverage 班级单科统计
// 管理口径：未发布成绩也计入，教师发布前即可看到班级水平
func (s *GradeCalcService) ClassSubjectAverage(tenantID, classID, subjectID uint, termID *uint) (*ClassSubjectStats, error) {
	grades, err := s.fetchGrades(tenantID, nil, &classID, &subjectID, termID, false)
	if err != nil {
		return nil, err
	}

	stats := &ClassSubjectStats{
		ClassID:      classID,
		SubjectID:    subjectID,
		GradeCount:   len(grades),
		Distribution: map[string]int{},
	}
	if len(grades) == 0 {
		return stats, nil
	}

	scale, err := s.scaleService.GetOrSeed(tenantID)
	if err != nil {
		return nil, err
	}

	// 先按学生分组求各自均值，再在学生之间等权平均，
	// 等级分布也按学生均值计数，成绩条数多的学生不会拉偏班级水平
	perStudent := make(map[uint][]float64)
	for _, g := range grades {
		perStudent[g.StudentID] = append(perStudent[g.StudentID], g.Percentage)
	}

	studentTotal := 0.0
	first := true
	for _, percentages := range perStudent {
		avg := round2(mean(percentages))
		studentTotal += avg
		stats.Distribution[scale.LetterFor(avg)]++
		if first || avg > stats.Highest {
			stats.Highest = avg
		}
		if first || avg < stats.Lowest {
			stats.Lowest = avg
		}
		first = false
	}
	stats.StudentCount = len(perStudent)
	stats.Average = round2(studentTotal / float64(len(perStudent)))
	return stats, nil
}

// CalculateTrend 成绩趋势：按时间排序后对半切分比较前后均值
// 差值超过+5为improving，低于-5为declining，恰好±5仍为stable；
// 少于3条成绩视为平稳
func CalculateTrend(grades []*models.Grade) string {
	if len(grades) < 3 {
		return TrendStable
	}

	sorted := make([]*models.Grade, len(grades))
	copy(sorted, grades)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	half := len(sorted) / 2
	earlier := make([]float64, 0, half)
	later := make([]float64, 0, len(sorted)-half)
	for i, g := range sorted {
		if i < half {
			earlier = append(earlier, g.Percentage)
		} else {
			later = append(later, g.Percentage)
		}
	}

	diff := mean(later) - mean(earlier)
	switch {
	case diff > 5:
		return TrendImproving
	case diff < -5:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func (s *GradeCalcService) fetchGrades(tenantID uint, studentID, classID, subjectID, termID *uint, publishedOnly bool) ([]*models.Grade, error) {
	var grades []*models.Grade
	query := s.db.Preload("Subject").Preload("GradeType").
		Where("tenant_id = ?", tenantID)
	if studentID != nil {
		query = query.Where("student_id = ?", *studentID)
	}
	if classID != nil {
		query = query.Where("class_id = ?", *classID)
	}
	if subjectID != nil {
		query = query.Where("subject_id = ?", *subjectID)
	}
	if termID != nil {
		query = query.Where("term_id = ?", *termID)
	}
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	err := query.Order("created_at ASC").Find(&grades).Error
	return grades, err
}
