package database

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"content_studio/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexSpec mô tả một index sinh ra từ struct tag `index:"..."`.
//
// Cú pháp tag (nhiều cấu hình cách nhau bởi ';'):
//
//	index:"single:1"            index đơn, order:-1 để giảm dần
//	index:"unique"              unique, thêm ",sparse" cho field tùy chọn
//	index:"text"                text index
//	index:"ttl:3600"            TTL (giây)
//	index:"compound:company_status" gom các field cùng group thành compound index,
//	                                 tên group chứa "_unique" thì index unique
type IndexSpec struct {
	Name   string
	Keys   bson.D
	Unique bool
	Sparse bool
	TTL    *int32
}

// Options chuyển IndexSpec thành options của driver
func (s IndexSpec) Options() *options.IndexOptions {
	opts := options.Index().SetName(s.Name)
	if s.Unique {
		opts.SetUnique(true)
	}
	if s.Sparse {
		opts.SetSparse(true)
	}
	if s.TTL != nil {
		opts.SetExpireAfterSeconds(*s.TTL)
	}
	return opts
}

// parseOrder: thứ tự sắp xếp từ tag (1 hoặc -1)
func parseOrder(tag string) int {
	if strings.Contains(tag, "order:-1") {
		return -1
	}
	return 1
}

// parseIndexTag: tách tag thành danh sách cấu hình key/value
func parseIndexTag(tag string) []map[string]string {
	result := []map[string]string{}
	for _, part := range strings.Split(tag, ";") {
		entry := map[string]string{}
		for _, sub := range strings.Split(part, ",") {
			kv := strings.SplitN(strings.TrimSpace(sub), ":", 2)
			if len(kv) == 2 {
				entry[kv[0]] = kv[1]
			} else {
				entry[kv[0]] = ""
			}
		}
		result = append(result, entry)
	}
	return result
}

// BuildIndexSpecs đọc tag index của model và trả về danh sách index cần có
func BuildIndexSpecs(model interface{}) ([]IndexSpec, error) {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model phải là struct, nhận %s", modelType.Kind())
	}

	var specs []IndexSpec
	compound := map[string]*IndexSpec{}

	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		tag, ok := field.Tag.Lookup("index")
		if !ok {
			continue
		}
		bsonField := strings.Split(field.Tag.Get("bson"), ",")[0]
		if bsonField == "" || bsonField == "-" {
			continue
		}

		for _, cfg := range parseIndexTag(tag) {
			_, sparse := cfg["sparse"]
			if _, ok := cfg["text"]; ok {
				specs = append(specs, IndexSpec{Name: bsonField + "_text", Keys: bson.D{{Key: bsonField, Value: "text"}}})
			}
			if _, ok := cfg["single"]; ok {
				specs = append(specs, IndexSpec{Name: bsonField + "_single", Keys: bson.D{{Key: bsonField, Value: parseOrder(tag)}}})
			}
			if _, ok := cfg["unique"]; ok {
				specs = append(specs, IndexSpec{
					Name:   bsonField + "_unique",
					Keys:   bson.D{{Key: bsonField, Value: 1}},
					Unique: true,
					Sparse: sparse,
				})
			}
			if ttlValue, ok := cfg["ttl"]; ok {
				ttl, err := strconv.Atoi(ttlValue)
				if err != nil {
					return nil, fmt.Errorf("TTL không hợp lệ ở field %s: %w", field.Name, err)
				}
				seconds := int32(ttl)
				specs = append(specs, IndexSpec{Name: bsonField + "_ttl", Keys: bson.D{{Key: bsonField, Value: 1}}, TTL: &seconds})
			}
			if group, ok := cfg["compound"]; ok {
				spec, exists := compound[group]
				if !exists {
					spec = &IndexSpec{Name: group, Unique: strings.Contains(group, "_unique")}
					compound[group] = spec
				}
				spec.Keys = append(spec.Keys, bson.E{Key: bsonField, Value: parseOrder(tag)})
				spec.Sparse = spec.Sparse || sparse
			}
		}
	}

	groups := make([]string, 0, len(compound))
	for name := range compound {
		groups = append(groups, name)
	}
	sort.Strings(groups)
	for _, name := range groups {
		specs = append(specs, *compound[name])
	}
	return specs, nil
}

// CreateIndexes tạo (hoặc thay thế nếu khác cấu hình) các index khai báo trên model
func CreateIndexes(ctx context.Context, collection *mongo.Collection, model interface{}) error {
	specs, err := BuildIndexSpecs(model)
	if err != nil {
		return err
	}

	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("không thể lấy danh sách index: %w", err)
	}
	existing := map[string]bson.M{}
	for cursor.Next(ctx) {
		var info bson.M
		if err := cursor.Decode(&info); err != nil {
			_ = cursor.Close(ctx)
			return fmt.Errorf("không thể giải mã thông tin index: %w", err)
		}
		if name, ok := info["name"].(string); ok {
			existing[name] = info
		}
	}
	_ = cursor.Close(ctx)

	log := logger.WithModule("database").WithField("collection", collection.Name())
	for _, spec := range specs {
		if info, ok := existing[spec.Name]; ok {
			if sameIndex(info, spec) {
				continue
			}
			if _, err := collection.Indexes().DropOne(ctx, spec.Name); err != nil {
				return fmt.Errorf("không thể xóa index %s: %w", spec.Name, err)
			}
			log.Infof("Đã xóa index cũ: %s", spec.Name)
		}
		if _, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: spec.Keys, Options: spec.Options()}); err != nil {
			return fmt.Errorf("không thể tạo index %s: %w", spec.Name, err)
		}
		log.Infof("Đã tạo index: %s", spec.Name)
	}
	return nil
}

// sameIndex so sánh index hiện có với index cần tạo (keys, unique, TTL)
func sameIndex(info bson.M, spec IndexSpec) bool {
	keys, ok := info["key"].(bson.M)
	if !ok || len(keys) != len(spec.Keys) {
		return false
	}
	for _, k := range spec.Keys {
		ev, exists := keys[k.Key]
		if !exists {
			return false
		}
		if want, isInt := k.Value.(int); isInt {
			switch v := ev.(type) {
			case int32:
				if int(v) != want {
					return false
				}
			case int64:
				if int(v) != want {
					return false
				}
			case float64:
				if int(v) != want {
					return false
				}
			default:
				return false
			}
		} else if ev != k.Value {
			return false
		}
	}
	unique, _ := info["unique"].(bool)
	if unique != spec.Unique {
		return false
	}
	if spec.TTL != nil {
		ttl, ok := info["expireAfterSeconds"].(int32)
		if !ok || ttl != *spec.TTL {
			return false
		}
	}
	return true
}
