package models

import (
	"math"
	"sort"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Grade 成绩模型
// percentage为派生字段，score/max_score变更后入库前自动重算；
// is_published门禁：面向学生/家长的聚合只统计已发布成绩
type Grade struct {
	BaseModel
	TenantID    uint    `json:"tenant_id" gorm:"not null;index"`
	StudentID   uint    `json:"student_id" gorm:"not null;index"`
	ClassID     uint    `json:"class_id" gorm:"not null;index"`
	SubjectID   uint    `json:"subject_id" gorm:"not null;index"`
	TeacherID   uint    `json:"teacher_id" gorm:"not null"`
	GradeTypeID uint    `json:"grade_type_id" gorm:"not null"`
	TermID      *uint   `json:"term_id" gorm:"index"`
	Score       float64 `json:"score" gorm:"not null"`
	MaxScore    float64 `json:"max_score" gorm:"default:100"`
	Percentage  float64 `json:"percentage"`
	LetterGrade *string `json:"letter_grade" gorm:"size:5"` // 可选的人工覆盖
	IsPublished bool    `json:"is_published" gorm:"default:false"`
	Comment     string  `json:"comment" gorm:"size:500"`

	GradeType *GradeType `json:"grade_type,omitempty" gorm:"foreignKey:GradeTypeID"`
	Subject   *Subject   `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
}

// TableName 表名
func (g *Grade) TableName() string {
	return "grades"
}

// BeforeSave 入库前重算百分比
func (g *Grade) BeforeSave(tx *gorm.DB) error {
	if g.MaxScore <= 0 {
		g.MaxScore = 100
	}
	g.Percentage = roundTo2(g.Score / g.MaxScore * 100)
	return nil
}

// roundTo2 四舍五入保留两位小数
func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GradeType 成绩类型模型
// weight为空表示不参与加权，首个租户访问时种子五个默认类型
type GradeType struct {
	BaseModel
	TenantID uint     `json:"tenant_id" gorm:"not null;index;uniqueIndex:idx_grade_types_tenant_name"`
	Name     string   `json:"name" gorm:"not null;size:50;uniqueIndex:idx_grade_types_tenant_name"`
	Weight   *float64 `json:"weight"` // [0,1]或null（不加权）
	MaxScore float64  `json:"max_score" gorm:"default:100"`
	IsActive bool     `json:"is_active" gorm:"default:true"`
}

// TableName 表名
func (t *GradeType) TableName() string {
	return "grade_types"
}

// ScaleBand 等级区间
type ScaleBand struct {
	Letter        string  `json:"letter"`
	MinPercentage float64 `json:"min_percentage"`
	MaxPercentage float64 `json:"max_percentage"`
	GPA           float64 `json:"gpa"`
}

// GradingScale 评分等级表模型 - 每租户一份
type GradingScale struct {
	BaseModel
	TenantID uint                               `json:"tenant_id" gorm:"uniqueIndex;not null"`
	Name     string                             `json:"name" gorm:"size:100"`
	Bands    datatypes.JSONType[[]ScaleBand]    `json:"bands" gorm:"type:jsonb"`
}

// TableName 表名
func (s *GradingScale) TableName() string {
	return "grading_scales"
}

// LetterFor 将百分比映射为等级字母
// 按minPercentage从高到低扫描，取第一个[min,max]包含该值的区间；
// 自定义等级表存在空洞或畸形时回落到F
func (s *GradingScale) LetterFor(percentage float64) string {
	bands := s.Bands.Data()
	sorted := make([]ScaleBand, len(bands))
	copy(sorted, bands)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinPercentage > sorted[j].MinPercentage
	})

	for _, band := range sorted {
		if percentage >= band.MinPercentage && percentage <= band.MaxPercentage {
			return band.Letter
		}
	}
	return "F"
}

// GPAFor 查找等级字母对应的绩点，无匹配区间时返回0（防御性默认而非报错）
func (s *GradingScale) GPAFor(letter string) float64 {
	for _, band := range s.Bands.Data() {
		if band.Letter == letter {
			return band.GPA
		}
	}
	return 0
}

// Term 学期模型
// is_current每租户至多一个为真，设置时在同一事务内先清后设
type Term struct {
	BaseModel
	TenantID     uint      `json:"tenant_id" gorm:"not null;index"`
	Name         string    `json:"name" gorm:"not null;size:100"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	AcademicYear string    `json:"academic_year" gorm:"size:20"`
	IsCurrent    bool      `json:"is_current" gorm:"default:false"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
}

// TableName 表名
func (t *Term) TableName() string {
	return "terms"
}
