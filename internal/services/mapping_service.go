package services

import (
	"fmt"

	"tmig/internal/legacy"
	"tmig/internal/models"
	"tmig/pkg/logger"

	"gorm.io/gorm"
)

// MappingService 标题映射维护：对照源库标题全集和当前可解析的目标标题，
// 把缺口写入映射表供管理员逐条整理（绑定目标或标记排除）
type MappingService struct {
	target *gorm.DB
	source *legacy.Repository
}

// NewMappingService 创建映射维护服务
func NewMappingService(target *gorm.DB, source *legacy.Repository) *MappingService {
	return &MappingService{target: target, source: source}
}

// GenerateMappings 为每种内容类型生成待整理映射，返回各类型新增条数
func (s *MappingService) GenerateMappings() (map[models.ContentType]int, error) {
	log := logger.GetLogger()
	result := make(map[models.ContentType]int)

	for _, contentType := range models.AllContentTypes() {
		titles, err := s.source.DistinctTitles(contentType)
		if err != nil {
			return nil, err
		}

		// 当前可解析的目标标题（占位记录不算可解析）
		var resolvable []string
		err = s.target.Model(&models.ContentItem{}).
			Where("type = ? AND is_shell = ?", contentType, false).
			Distinct().Pluck("title", &resolvable).Error
		if err != nil {
			return nil, fmt.Errorf("查询目标标题失败: %v", err)
		}

		// 已有映射不重复生成
		var mapped []string
		err = s.target.Model(&models.TitleMapping{}).
			Where("content_type = ?", contentType).
			Pluck("source_title", &mapped).Error
		if err != nil {
			return nil, fmt.Errorf("查询已有映射失败: %v", err)
		}

		known := make(map[string]bool, len(resolvable)+len(mapped))
		for _, t := range resolvable {
			known[t] = true
		}
		for _, t := range mapped {
			known[t] = true
		}

		created := 0
		for _, title := range titles {
			if known[title] {
				continue
			}
			mapping := &models.TitleMapping{
				ContentType: contentType,
				SourceTitle: title,
			}
			if err := s.target.Create(mapping).Error; err != nil {
				return nil, fmt.Errorf("写入映射失败: %v", err)
			}
			created++
		}

		result[contentType] = created
		log.Infof("映射生成 %s: 源标题 %d, 新增待整理 %d", contentType, len(titles), created)
	}

	return result, nil
}
