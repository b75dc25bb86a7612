package atlaslib_test

import (
	"context"
	"net"

	"github.com/stretchr/testify/mock"

	"github.com/takeshi-0987/ipatlas/atlaslib"
)

type SourceMock struct {
	mock.Mock
}

func (m *SourceMock) Name() string {
	return m.Called().String(0)
}

func (m *SourceMock) Path() string {
	return m.Called().String(0)
}

func (m *SourceMock) Kind() string {
	return m.Called().String(0)
}

func (m *SourceMock) Lookup(ctx context.Context, ip net.IP) (atlaslib.Record, error) {
	args := m.Called(ctx, ip)

	return args.Get(0).(atlaslib.Record), args.Error(1)
}

type RegistryMock struct {
	mock.Mock
}

func (m *RegistryMock) Sources() []atlaslib.Source {
	return m.Called().Get(0).([]atlaslib.Source)
}

func (m *RegistryMock) Statuses() []atlaslib.SourceStatus {
	return m.Called().Get(0).([]atlaslib.SourceStatus)
}

func (m *RegistryMock) Close() error {
	return m.Called().Error(0)
}

type LoggerMock struct {
	mock.Mock
}

func (m *LoggerMock) LookupError(ip string, source string, err error) {
	m.Called(ip, source, err)
}

// newSourceMock wires the identity methods every engine call touches.
func newSourceMock(name string) *SourceMock {
	src := &SourceMock{}

	src.On("Name").Return(name).Maybe()
	src.On("Path").Return("/geoip/" + name + ".mmdb").Maybe()
	src.On("Kind").Return("mmdb").Maybe()

	return src
}
