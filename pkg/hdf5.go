package spectra

import (
	"github.com/jmbenlloch/go-hdf5"
	"gonum.org/v1/gonum/mat"
)

// RunInfoHDF5 is the layout of the runInfo table in the output file.
type RunInfoHDF5 struct {
	run_number int32
}

// ParamHDF5 is the layout of one row of the analysis parameter tables.
type ParamHDF5 struct {
	paramStr [STRLEN]byte
	value    float64
}

const STRLEN = 20

func convertToHdf5String(s string) [STRLEN]byte {
	var byteArray [STRLEN]byte
	copy(byteArray[:], s)
	return byteArray
}

func openFile(fname string) *hdf5.File {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		panic(err)
	}
	return f
}

func openFileReadOnly(fname string) (*hdf5.File, error) {
	f, err := hdf5.OpenFile(fname, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func createGroup(file *hdf5.File, groupName string) *hdf5.Group {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		panic(err)
	}
	return g
}

func createSubGroup(group *hdf5.Group, groupName string) *hdf5.Group {
	g, err := group.CreateGroup(groupName)
	if err != nil {
		panic(err)
	}
	return g
}

// create1dArray creates an extendable float64 dataset. The actual length
// is set on the first write.
func create1dArray(group *hdf5.Group, name string) *hdf5.Dataset {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	file_space, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		panic(err)
	}

	// create property list
	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		panic(err)
	}

	chunks := []uint{32768}
	plist.SetChunk(chunks)

	// Set compression level
	plist.SetDeflate(configuration.CompressionLevel)

	// create the dataset
	dset, err := group.CreateDatasetWith(name, hdf5.T_NATIVE_DOUBLE, file_space, plist)
	if err != nil {
		panic(err)
	}
	return dset
}

func createTable(group *hdf5.Group, name string, datatype interface{}) *hdf5.Dataset {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	file_space, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		panic(err)
	}

	// create property list
	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		panic(err)
	}

	chunks := []uint{32768}
	plist.SetChunk(chunks)

	// Set compression level
	plist.SetDeflate(configuration.CompressionLevel)

	// create the memory data type
	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		panic(err)
	}

	// create the dataset
	dset, err := group.CreateDatasetWith(name, dtype, file_space, plist)
	if err != nil {
		panic(err)
	}
	return dset
}

func writeEntryToTable[T any](dataset *hdf5.Dataset, data T, evtCounter int) {
	array := []T{data}
	writeArrayToTable(dataset, &array, evtCounter)
}

func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, evtCounter int) {
	length := uint(len(*data))
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		panic(err)
	}

	// extend
	entriesInFile := uint(evtCounter)
	newsize := []uint{entriesInFile + length}
	dataset.Resize(newsize)
	filespace := dataset.Space()

	start := []uint{entriesInFile}
	count := []uint{length}
	filespace.SelectHyperslab(start, nil, count, nil)

	err = dataset.WriteSubset(data, dataspace, filespace)
	if err != nil {
		panic(err)
	}

	dataspace.Close()
	filespace.Close()
}

func write1dArray(dataset *hdf5.Dataset, data *[]float64) {
	length := uint(len(*data))
	newsize := []uint{length}
	dataset.Resize(newsize)
	filespace := dataset.Space()

	start := []uint{0}
	count := []uint{length}
	filespace.SelectHyperslab(start, nil, count, nil)

	dataspace, err := hdf5.CreateSimpleDataspace(count, nil)
	if err != nil {
		panic(err)
	}

	err = dataset.WriteSubset(data, dataspace, filespace)
	if err != nil {
		panic(err)
	}

	dataspace.Close()
	filespace.Close()
}

// datasetDims returns the dataspace extent of a dataset. Scalar
// dataspaces come back as an empty slice.
func datasetDims(dset *hdf5.Dataset) ([]uint, error) {
	space := dset.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, err
	}
	return dims, nil
}

// readVectorFloat reads a 1d dataset as float64. HDF5 converts the
// stored type on the fly, so integer datasets read fine.
func readVectorFloat(file *hdf5.File, path string) ([]float64, error) {
	dset, err := file.OpenDataset(path)
	if err != nil {
		return nil, &ErrReadDataset{Path: path, Err: err}
	}
	defer dset.Close()

	dims, err := datasetDims(dset)
	if err != nil {
		return nil, &ErrReadDataset{Path: path, Err: err}
	}
	length := uint(1)
	for _, dim := range dims {
		length *= dim
	}

	data := make([]float64, length)
	err = dset.Read(&data)
	if err != nil {
		return nil, &ErrReadDataset{Path: path, Err: err}
	}
	return data, nil
}

func readVectorInt64(file *hdf5.File, path string) ([]int64, error) {
	dset, err := file.OpenDataset(path)
	if err != nil {
		return nil, &ErrReadDataset{Path: path, Err: err}
	}
	defer dset.Close()

	dims, err := datasetDims(dset)
	if err != nil {
		return nil, &ErrReadDataset{Path: path, Err: err}
	}
	length := uint(1)
	for _, dim := range dims {
		length *= dim
	}

	data := make([]int64, length)
	err = dset.Read(&data)
	if err != nil {
		return nil, &ErrReadDataset{Path: path, Err: err}
	}
	return data, nil
}

// readScalarFloat reads the first entry of a dataset. The DAQ stores
// run metadata as length-1 arrays.
func readScalarFloat(file *hdf5.File, path string) (float64, error) {
	data, err := readVectorFloat(file, path)
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, &ErrReadDataset{Path: path, Err: errEmptyDataset}
	}
	return data[0], nil
}

func readScalarInt64(file *hdf5.File, path string) (int64, error) {
	data, err := readVectorInt64(file, path)
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, &ErrReadDataset{Path: path, Err: errEmptyDataset}
	}
	return data[0], nil
}

// readMatrixFloat reads a 2d dataset into a dense matrix, one shot per row.
func readMatrixFloat(file *hdf5.File, path string) (*mat.Dense, error) {
	dset, err := file.OpenDataset(path)
	if err != nil {
		return nil, &ErrReadDataset{Path: path, Err: err}
	}
	defer dset.Close()

	dims, err := datasetDims(dset)
	if err != nil {
		return nil, &ErrReadDataset{Path: path, Err: err}
	}
	if len(dims) != 2 {
		return nil, &ErrReadDataset{Path: path, Err: errNot2d}
	}
	rows := int(dims[0])
	cols := int(dims[1])

	data := make([]float64, rows*cols)
	err = dset.Read(&data)
	if err != nil {
		return nil, &ErrReadDataset{Path: path, Err: err}
	}
	return mat.NewDense(rows, cols, data), nil
}
