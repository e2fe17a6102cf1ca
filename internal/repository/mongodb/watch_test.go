package mongodb

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestDecodeChange(t *testing.T) {
	cases := []struct {
		name  string
		event bson.M
		want  Change
	}{
		{
			name: "insert",
			event: bson.M{
				"operationType": "insert",
				"ns":            bson.M{"db": "taskboard", "coll": TasksCollection},
				"fullDocument":  bson.M{"_id": "t1", "tugas": "x", "uid": "alice"},
			},
			want: Change{Collection: TasksCollection, OwnerID: "alice"},
		},
		{
			name: "category update",
			event: bson.M{
				"operationType": "update",
				"ns":            bson.M{"coll": CategoriesCollection},
				"fullDocument":  bson.M{"_id": "c1", "category": "Kuliah", "uid": "bob"},
			},
			want: Change{Collection: CategoriesCollection, OwnerID: "bob"},
		},
		{
			name: "delete has no document",
			event: bson.M{
				"operationType": "delete",
				"ns":            bson.M{"coll": TasksCollection},
				"documentKey":   bson.M{"_id": "t1"},
			},
			want: Change{Collection: TasksCollection},
		},
		{
			name: "update of a document deleted since",
			event: bson.M{
				"operationType": "update",
				"ns":            bson.M{"coll": TasksCollection},
				"fullDocument":  nil,
			},
			want: Change{Collection: TasksCollection},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := bson.Marshal(tc.event)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			got, err := decodeChange(raw)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}
