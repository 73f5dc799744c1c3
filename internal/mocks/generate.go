package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Feed --dir ../domain/matchevent --output domain/matchevent --outpkg matcheventmock --filename feed_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/playerprofile --output domain/playerprofile --outpkg playerprofilemock --filename repository_mock.go
