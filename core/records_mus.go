package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// IDMUS is the MUS serializer for ID.
var IDMUS = idMUS{}

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	return ID(tmp), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

// PassageMUS is the MUS serializer for Passage.
// Field order: Id, Namespace, Source, Article, ArticleNum, Text,
// Vector, Metadata, InsertedAt (unix micro).
var PassageMUS = passageMUS{}

type passageMUS struct{}

func (s passageMUS) Marshal(v Passage, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Namespace, bs[n:])
	n += ord.String.Marshal(v.Source, bs[n:])
	n += ord.String.Marshal(v.Article, bs[n:])
	n += ord.String.Marshal(v.ArticleNum, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += varint.PositiveInt.Marshal(len(v.Vector), bs[n:])
	for _, f := range v.Vector {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	n += varint.PositiveInt.Marshal(len(v.Metadata), bs[n:])
	for k, val := range v.Metadata {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(val, bs[n:])
	}
	n += varint.Int64.Marshal(timeToMicro(v.InsertedAt), bs[n:])
	return n
}

func (s passageMUS) Unmarshal(bs []byte) (v Passage, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	for _, field := range []*string{&v.Namespace, &v.Source, &v.Article, &v.ArticleNum, &v.Text} {
		*field, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}

	var length int
	length, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length > 0 {
		v.Vector = make([]float32, length)
		for i := range v.Vector {
			v.Vector[i], n1, err = raw.Float32.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}

	length, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length > 0 {
		v.Metadata = make(map[string]string, length)
		for i := 0; i < length; i++ {
			var key, val string
			key, n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			val, n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			v.Metadata[key] = val
		}
	}

	var micro int64
	micro, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt = microToTime(micro)
	return
}

func (s passageMUS) Size(v Passage) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Namespace)
	size += ord.String.Size(v.Source)
	size += ord.String.Size(v.Article)
	size += ord.String.Size(v.ArticleNum)
	size += ord.String.Size(v.Text)
	size += varint.PositiveInt.Size(len(v.Vector))
	for _, f := range v.Vector {
		size += raw.Float32.Size(f)
	}
	size += varint.PositiveInt.Size(len(v.Metadata))
	for k, val := range v.Metadata {
		size += ord.String.Size(k)
		size += ord.String.Size(val)
	}
	return size + varint.Int64.Size(timeToMicro(v.InsertedAt))
}

func timeToMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func microToTime(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMicro(v).UTC()
}
