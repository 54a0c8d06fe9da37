package zone

// Values are the classified metrics of one server.
type Values struct {
	Users       int     `json:"users"`
	Models      int     `json:"models"`
	AvgSizeMB   float64 `json:"avg_size_mb"`
	TotalSizeGB float64 `json:"total_size_gb"`
}

// Zones holds the per-metric zones of one server and their worst case.
type Zones struct {
	Users     Zone `json:"users"`
	Models    Zone `json:"models"`
	AvgSize   Zone `json:"avg_size"`
	TotalSize Zone `json:"total_size"`
	Overall   Zone `json:"overall"`
}

// ClassifyAll classifies every metric of v.
func ClassifyAll(v Values) Zones {
	z := Zones{
		Users:     Classify(MetricUsers, float64(v.Users)),
		Models:    Classify(MetricModels, float64(v.Models)),
		AvgSize:   Classify(MetricAvgSize, v.AvgSizeMB),
		TotalSize: Classify(MetricTotalSize, v.TotalSizeGB),
	}
	z.Overall = Worst(z.Users, z.Models, z.AvgSize, z.TotalSize)
	return z
}

// Recommendations returns operator advice for a server in the given overall zone.
func Recommendations(overall Zone, v Values) []string {
	var out []string

	switch overall {
	case Critical:
		if v.Users > UsersWarningMax {
			out = append(out, "КРИТИЧНО: Требуется новый Host сервер - превышен лимит пользователей")
		}
		if v.Models > ModelsWarningMax {
			out = append(out, "КРИТИЧНО: Разделите модели на несколько серверов")
		}
		if v.AvgSizeMB > AvgSizeWarnMaxMB {
			out = append(out, "КРИТИЧНО: Очень большие модели замедляют работу - оптимизируйте их")
		}
		if v.TotalSizeGB > TotalSizeWarnMaxGB {
			out = append(out, "КРИТИЧНО: Проверьте свободное место на сервере и производительность storage")
		}
	case Warning:
		if v.Users > UsersGoodMax {
			out = append(out, "Рекомендуется настроить Accelerator для удаленных офисов")
		}
		if v.Models > ModelsGoodMax {
			out = append(out, "Рассмотрите возможность архивирования завершенных проектов")
		}
		if v.AvgSizeMB > AvgSizeGoodMaxMB {
			out = append(out, "Модели становятся большими - следите за их оптимизацией")
		}
		if v.TotalSizeGB >= TotalSizeGoodLtGB {
			out = append(out, "Проверьте доступное место на сервере")
		}
		out = append(out, "Следите за ростом нагрузки на сервер")
	default:
		out = append(out, "Сервер работает оптимально", "Никаких действий не требуется")
	}

	return out
}
